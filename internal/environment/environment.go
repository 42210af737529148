// Package environment implements the lexical scope chain used by the
// evaluator: a map from identifier to runtime value, plus an optional
// parent forming a chain rooted at the globals environment.
package environment

import (
	"github.com/aledsdavies/rill/internal/rerr"
	"github.com/aledsdavies/rill/internal/token"
)

// Environment is one frame of the lexical scope chain. The zero value is
// not usable; construct with New or NewChild.
type Environment struct {
	values map[string]any
	parent *Environment
}

// New creates a root environment (the globals environment).
func New() *Environment {
	return &Environment{values: make(map[string]any)}
}

// NewChild creates a child environment whose parent is e. Block entry,
// function calls, and class bodies each introduce one of these; a user
// function's call-frame environment is a child of its closure, not of the
// caller's environment.
func NewChild(parent *Environment) *Environment {
	return &Environment{values: make(map[string]any), parent: parent}
}

// Define unconditionally binds name to value in this frame. Redefining an
// existing name in the same frame (e.g. shadowing at the REPL top level)
// overwrites it.
func (e *Environment) Define(name string, value any) {
	e.values[name] = value
}

// Get resolves name in this frame, falling back to the parent chain.
// Reaching the root without finding it is a runtime error.
func (e *Environment) Get(name token.Token) (any, error) {
	if v, ok := e.values[name.Lexeme]; ok {
		return v, nil
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, rerr.Newf(rerr.Runtime, name.Line, "Undefined variable '%s'.", name.Lexeme)
}

// Assign sets name to value in the nearest frame (this one or an
// ancestor) where it is already defined. Reaching the root without
// finding it is a runtime error.
func (e *Environment) Assign(name token.Token, value any) error {
	if _, ok := e.values[name.Lexeme]; ok {
		e.values[name.Lexeme] = value
		return nil
	}
	if e.parent != nil {
		return e.parent.Assign(name, value)
	}
	return rerr.Newf(rerr.Runtime, name.Line, "Undefined variable '%s'.", name.Lexeme)
}

// GetAt reads name exactly `distance` frames up, with no fallback beyond
// that frame. Used for resolver-annotated variable uses where the static
// depth is already known.
func (e *Environment) GetAt(distance int, name string) any {
	return e.ancestor(distance).values[name]
}

// AssignAt writes name exactly `distance` frames up, with no fallback.
func (e *Environment) AssignAt(distance int, name string, value any) {
	e.ancestor(distance).values[name] = value
}

func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.parent
	}
	return env
}
