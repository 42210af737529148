// Package rinvariant provides contract assertions for the interpreter,
// trimmed from the teacher's core/invariant. Violations are programming
// errors, not user-facing language errors, so these panic rather than
// return *rerr.Error.
package rinvariant

import (
	"fmt"
	"runtime"
)

// Invariant panics if condition is false. Use for internal consistency
// checks — e.g. "block exit must restore the prior environment" — that
// should never fail for any well-formed AST.
func Invariant(condition bool, format string, args ...any) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// Precondition panics if condition is false. Use to validate a function's
// own input contract, as distinct from a general internal invariant.
func Precondition(condition bool, format string, args ...any) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

func fail(kind, format string, args ...any) {
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])

	msg := fmt.Sprintf("%s VIOLATION: "+format, append([]any{kind}, args...)...)
	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}
	panic(msg)
}
