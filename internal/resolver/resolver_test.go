package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/rill/internal/lexer"
	"github.com/aledsdavies/rill/internal/parser"
)

func resolveSource(t *testing.T, source string) (Locals, error) {
	t.Helper()
	s := lexer.New(source)
	toks := s.ScanTokens()
	require.False(t, s.HasErrors())
	stmts, err := parser.New(toks).ParseProgram()
	require.NoError(t, err)
	return New().Resolve(stmts)
}

func TestResolve_SimpleProgramSucceeds(t *testing.T) {
	_, err := resolveSource(t, `var a = 1; var b = 2; print a + b;`)
	require.NoError(t, err)
}

func TestResolve_ReadOwnInitializerIsError(t *testing.T) {
	_, err := resolveSource(t, `var a = a;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't read local variable in its own initializer.")
}

func TestResolve_TopLevelReturnIsError(t *testing.T) {
	_, err := resolveSource(t, `return 1;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't return from top-level code.")
}

func TestResolve_ReturnValueFromInitializerIsError(t *testing.T) {
	_, err := resolveSource(t, `class A { init() { return 1; } }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't return a value from an initializer.")
}

func TestResolve_BareReturnFromInitializerIsFine(t *testing.T) {
	_, err := resolveSource(t, `class A { init() { return; } }`)
	require.NoError(t, err)
}

func TestResolve_ClassCannotInheritFromItself(t *testing.T) {
	_, err := resolveSource(t, `class Oops < Oops {}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A class can't inherit from itself.")
}

func TestResolve_ThisOutsideClassIsError(t *testing.T) {
	_, err := resolveSource(t, `print this;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'this' outside of a class.")
}

func TestResolve_SuperOutsideClassIsError(t *testing.T) {
	_, err := resolveSource(t, `print super.foo;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'super' outside of a class.")
}

func TestResolve_SuperWithoutSuperclassIsError(t *testing.T) {
	_, err := resolveSource(t, `class A { foo() { super.foo(); } }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'super' in a class with no superclass.")
}

func TestResolve_ClosureDepthRecorded(t *testing.T) {
	locals, err := resolveSource(t, `
		fun outer() {
			var x = 1;
			fun inner() {
				print x;
			}
			inner();
		}
	`)
	require.NoError(t, err)
	assert.NotEmpty(t, locals)
}

func TestResolve_DuplicateVarInSameScopeIsError(t *testing.T) {
	_, err := resolveSource(t, `{ var a = 1; var a = 2; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Already a variable with this name in this scope.")
}

func TestResolve_ShadowingInNestedBlockIsFine(t *testing.T) {
	_, err := resolveSource(t, `var a = 1; { var a = 2; print a; }`)
	require.NoError(t, err)
}
