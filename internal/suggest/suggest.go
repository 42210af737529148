// Package suggest provides "did you mean" lookups for undefined-name
// runtime errors, grounded on the teacher's runtime/planner
// findClosestMatch helper, which uses lithammer/fuzzysearch to suggest a
// decorator name from a typo.
//
// This is purely cosmetic: it only annotates an error message that has
// already been decided; it never changes whether resolution succeeds,
// which exit code is chosen, or any other observable control-flow
// behavior described in SPEC_FULL.md.
package suggest

import "github.com/lithammer/fuzzysearch/fuzzy"

// Nearest finds the closest candidate to name using fuzzy ranking, or ""
// if candidates is empty or nothing ranks as close.
func Nearest(name string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	if best.Target == name {
		return ""
	}
	return best.Target
}
