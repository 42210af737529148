package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/rill/internal/token"
)

func tok(name string) token.Token {
	return token.New(token.IDENTIFIER, name, nil, 1)
}

func TestDefineAndGet(t *testing.T) {
	e := New()
	e.Define("a", 1.0)
	v, err := e.Get(tok("a"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestGetFallsBackToParent(t *testing.T) {
	globals := New()
	globals.Define("a", "global")
	child := NewChild(globals)
	v, err := child.Get(tok("a"))
	require.NoError(t, err)
	assert.Equal(t, "global", v)
}

func TestGetUndefinedIsRuntimeError(t *testing.T) {
	e := New()
	_, err := e.Get(tok("missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable 'missing'.")
}

func TestAssignUpdatesNearestDefiningFrame(t *testing.T) {
	globals := New()
	globals.Define("a", 1.0)
	child := NewChild(globals)
	require.NoError(t, child.Assign(tok("a"), 2.0))

	v, err := globals.Get(tok("a"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	// Child frame itself never got its own binding.
	_, ok := child.values["a"]
	assert.False(t, ok)
}

func TestAssignUndefinedIsRuntimeError(t *testing.T) {
	e := New()
	err := e.Assign(tok("missing"), 1.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable 'missing'.")
}

func TestGetAtAndAssignAtJumpExactDistance(t *testing.T) {
	globals := New()
	mid := NewChild(globals)
	inner := NewChild(mid)

	mid.Define("x", "mid-value")
	globals.Define("x", "global-value")

	assert.Equal(t, "mid-value", inner.GetAt(1, "x"))
	assert.Equal(t, "global-value", inner.GetAt(2, "x"))

	inner.AssignAt(1, "x", "updated")
	assert.Equal(t, "updated", mid.GetAt(0, "x"))
}

func TestShadowingInChildDoesNotMutateParent(t *testing.T) {
	globals := New()
	globals.Define("a", "outer")
	child := NewChild(globals)
	child.Define("a", "inner")

	v, err := child.Get(tok("a"))
	require.NoError(t, err)
	assert.Equal(t, "inner", v)

	v, err = globals.Get(tok("a"))
	require.NoError(t, err)
	assert.Equal(t, "outer", v)
}
