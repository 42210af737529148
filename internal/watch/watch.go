// Package watch implements the `rill run --watch` convenience: re-run a
// script whenever its content changes on disk.
//
// Grounded on the teacher's runtime/planner and streamscrub packages,
// which both carry fsnotify/fsnotify in go.mod for live-reload style
// triggers; content-based dedup against spurious double-write events
// uses the snapshot package's BLAKE2b fingerprint, the same scheme the
// teacher's scrubber/planfmt code uses for content identity.
package watch

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/aledsdavies/rill/internal/rlog"
	"github.com/aledsdavies/rill/internal/snapshot"
)

// Run watches path and calls onChange each time its content actually
// changes, until the process is interrupted or a fatal watcher error
// occurs. onChange receives the newly-read file content.
func Run(path string, onChange func(source []byte)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch: watching %s: %w", path, err)
	}

	var last snapshot.Hash
	if source, err := os.ReadFile(path); err == nil {
		last = snapshot.Of(source)
	}

	rlog.Debugf("watching %s for changes", path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			source, err := os.ReadFile(path)
			if err != nil {
				rlog.Warnf("watch: re-reading %s: %v", path, err)
				continue
			}
			hash := snapshot.Of(source)
			if hash == last {
				rlog.Debugf("watch: %s content unchanged, skipping re-run", path)
				continue
			}
			last = hash
			onChange(source)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			rlog.Warnf("watch: %v", err)
		}
	}
}
