package interpreter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/rill/internal/lexer"
	"github.com/aledsdavies/rill/internal/parser"
	"github.com/aledsdavies/rill/internal/resolver"
)

// run scans, parses, resolves, and executes source, returning stdout and
// any error from execution.
func run(t *testing.T, source string) (string, error) {
	t.Helper()

	s := lexer.New(source)
	toks := s.ScanTokens()
	require.False(t, s.HasErrors(), "unexpected lex errors: %v", s.Err)

	stmts, err := parser.New(toks).ParseProgram()
	require.NoError(t, err)

	locals, err := resolver.New().Resolve(stmts)
	require.NoError(t, err)

	var out bytes.Buffer
	interp := New(&out)
	interp.SetLocals(locals)

	err = interp.InterpretStmts(stmts)
	return out.String(), err
}

func TestInterpret_StringConcatenation(t *testing.T) {
	out, err := run(t, `print "Hello, " + "world!";`)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!\n", out)
}

func TestInterpret_NumericAddition(t *testing.T) {
	out, err := run(t, `var a = 1; var b = 2; print a + b;`)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestInterpret_ClosureCapturesEnclosingLocal(t *testing.T) {
	out, err := run(t, `
		fun make(n) {
			fun add(x) { return n + x; }
			return add;
		}
		var a = make(10);
		print a(5);
		print a(7);
	`)
	require.NoError(t, err)
	assert.Equal(t, "15\n17\n", out)
}

func TestInterpret_InstanceFieldAssignmentAndRead(t *testing.T) {
	out, err := run(t, `
		class Bagel {}
		var b = Bagel();
		b.topping = "cream cheese";
		print b.topping;
	`)
	require.NoError(t, err)
	assert.Equal(t, "cream cheese\n", out)
}

func TestInterpret_SuperCallsParentMethod(t *testing.T) {
	out, err := run(t, `
		class A { say() { print "A"; } }
		class B < A { say() { super.say(); print "B"; } }
		B().say();
	`)
	require.NoError(t, err)
	assert.Equal(t, "A\nB\n", out)
}

func TestInterpret_InitializerBindsThis(t *testing.T) {
	out, err := run(t, `
		class Foo { init(x) { this.x = x; } }
		var f = Foo(3);
		print f.x;
	`)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestInterpret_BareReturnInInitializerYieldsInstance(t *testing.T) {
	out, err := run(t, `
		class Foo {
			init(x) {
				this.x = x;
				if (x > 0) return;
				this.x = -1;
			}
		}
		print Foo(5).x;
	`)
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestInterpret_MixedStringAndNumberAdditionIsRuntimeError(t *testing.T) {
	_, err := run(t, `print "abc" + 1;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operands must be two numbers or two strings.")
}

func TestInterpret_UndefinedVariableIsRuntimeError(t *testing.T) {
	_, err := run(t, `print notDefined;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable")
}

func TestInterpret_CallingNonCallableIsRuntimeError(t *testing.T) {
	_, err := run(t, `var a = 1; a();`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can only call functions and classes.")
}

func TestInterpret_ArityMismatchIsRuntimeError(t *testing.T) {
	_, err := run(t, `fun f(a, b) { return a + b; } f(1);`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected 2 arguments but got 1.")
}

func TestInterpret_GetOnNonInstanceIsRuntimeError(t *testing.T) {
	_, err := run(t, `var a = 1; print a.x;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Only instances have properties.")
}

func TestInterpret_SuperclassMustBeClass(t *testing.T) {
	_, err := run(t, `var NotAClass = 1; class B < NotAClass {}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Superclass must be a class.")
}

func TestInterpret_WhileLoopAccumulates(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		var sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		print sum;
	`)
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)
}

func TestInterpret_ForLoopDesugarsCorrectly(t *testing.T) {
	out, err := run(t, `
		for (var i = 0; i < 3; i = i + 1) print i;
	`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestInterpret_LogicalOperatorsReturnOperandsNotBooleans(t *testing.T) {
	out, err := run(t, `
		print "hi" or "bye";
		print nil or "fallback";
		print false and "unreached";
	`)
	require.NoError(t, err)
	assert.Equal(t, "hi\nfallback\nfalse\n", out)
}

func TestInterpret_BlockScopingShadowsOuter(t *testing.T) {
	out, err := run(t, `
		var a = "outer";
		{
			var a = "inner";
			print a;
		}
		print a;
	`)
	require.NoError(t, err)
	assert.Equal(t, "inner\nouter\n", out)
}

func TestInterpret_NativeClockReturnsNumber(t *testing.T) {
	out, err := run(t, `print type(clock());`)
	require.NoError(t, err)
	assert.Equal(t, "number\n", out)
}

func TestInterpret_NativeStrAndType(t *testing.T) {
	out, err := run(t, `print str(3) + "!"; print type("hi");`)
	require.NoError(t, err)
	assert.Equal(t, "3!\nstring\n", out)
}

func TestInterpretExpr_EvaluatesAndPrints(t *testing.T) {
	toks := lexer.New("1 + 2 * 3").ScanTokens()
	expr, err := parser.New(toks).ParseExpression()
	require.NoError(t, err)

	var out bytes.Buffer
	interp := New(&out)
	require.NoError(t, interp.InterpretExpr(expr))
	assert.Equal(t, "7\n", out.String())
}
