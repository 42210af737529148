// Package interpreter is the tree-walking evaluator: it executes the
// parsed, resolved statement list directly against the AST, using the
// resolver's depth table to jump straight to the declaring environment
// frame instead of re-walking the scope chain on every lookup.
package interpreter

import (
	"fmt"
	"io"
	"time"

	"github.com/aledsdavies/rill/internal/ast"
	"github.com/aledsdavies/rill/internal/environment"
	"github.com/aledsdavies/rill/internal/resolver"
	"github.com/aledsdavies/rill/internal/rerr"
	"github.com/aledsdavies/rill/internal/rinvariant"
	"github.com/aledsdavies/rill/internal/rlog"
	"github.com/aledsdavies/rill/internal/token"
	"github.com/aledsdavies/rill/internal/value"
)

// returnSignal is the non-error control-flow value spec.md §7 calls out:
// it carries a Return statement's value up to the enclosing call frame
// and must never escape past CallFunction.
type returnSignal struct {
	Value any
}

func (r *returnSignal) Error() string { return "return signal escaped its call frame" }

// Interpreter walks a resolved program, evaluating expressions and
// executing statements against a chain of Environment frames rooted at
// Globals.
type Interpreter struct {
	Globals  *environment.Environment
	env      *environment.Environment
	locals   resolver.Locals
	stdout   io.Writer
	suggest  func(name string) string
}

// New constructs an Interpreter with the globals environment pre-seeded
// with the native functions spec.md §4.5 and SPEC_FULL.md require:
// clock() is the sole mandated builtin, str/type are additive.
func New(stdout io.Writer) *Interpreter {
	globals := environment.New()
	i := &Interpreter{
		Globals: globals,
		env:     globals,
		locals:  make(resolver.Locals),
		stdout:  stdout,
	}

	globals.Define("clock", &value.NativeFunction{
		Name:   "clock",
		ArityN: 0,
		Fn: func(arguments []any) (any, error) {
			return float64(time.Now().UnixNano()) / 1e9, nil
		},
	})
	globals.Define("str", &value.NativeFunction{
		Name:   "str",
		ArityN: 1,
		Fn: func(arguments []any) (any, error) {
			return value.Stringify(arguments[0]), nil
		},
	})
	globals.Define("type", &value.NativeFunction{
		Name:   "type",
		ArityN: 1,
		Fn: func(arguments []any) (any, error) {
			return value.TypeName(arguments[0]), nil
		},
	})

	return i
}

// SetLocals installs the depth table produced by the resolver pass. Must
// be called before InterpretStmts/InterpretExpr for any program that
// declares local variables, functions, or classes.
func (i *Interpreter) SetLocals(locals resolver.Locals) {
	i.locals = locals
}

// SetSuggester installs a "did you mean" lookup (typically
// (*resolver.Resolver).Suggest) consulted when an undefined-variable
// runtime error is raised. Purely cosmetic per SPEC_FULL.md §4.3: it
// never changes whether resolution succeeds or the exit code chosen.
func (i *Interpreter) SetSuggester(suggest func(name string) string) {
	i.suggest = suggest
}

func (i *Interpreter) annotateUndefined(err error, name string) error {
	if err == nil || i.suggest == nil {
		return err
	}
	re, ok := rerr.As(err)
	if !ok {
		return err
	}
	near := i.suggest(name)
	if near == "" {
		return err
	}
	re.Message = fmt.Sprintf("%s (did you mean '%s'?)", re.Message, near)
	return re
}

// InterpretExpr evaluates a single expression and writes its stringified
// result to stdout, as the `evaluate` CLI command requires.
func (i *Interpreter) InterpretExpr(expr ast.Expr) error {
	val, err := i.evaluate(expr)
	if err != nil {
		return err
	}
	fmt.Fprintln(i.stdout, value.Stringify(val))
	return nil
}

// InterpretStmts executes a statement list for side effects, as the
// `run` CLI command requires.
func (i *Interpreter) InterpretStmts(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := i.execute(s); err != nil {
			return err
		}
	}
	return nil
}

// CallFunction implements value.Interpreter: it builds a fresh call
// frame as a child of the function's closure (not the caller's
// environment), binds parameters, executes the body as a block, and
// converts a caught returnSignal into the call's result. An initializer
// always yields the bound instance, regardless of what (if anything)
// its body returned.
func (i *Interpreter) CallFunction(fn *value.Function, arguments []any) (any, error) {
	callEnv := environment.NewChild(fn.Closure)
	for idx, param := range fn.Declaration.Params {
		callEnv.Define(param.Lexeme, arguments[idx])
	}

	err := i.executeBlock(fn.Declaration.Body, callEnv)
	if err != nil {
		ret, ok := err.(*returnSignal)
		if !ok {
			return nil, err
		}
		if fn.IsInitializer {
			return fn.Closure.GetAt(0, "this"), nil
		}
		return ret.Value, nil
	}

	if fn.IsInitializer {
		return fn.Closure.GetAt(0, "this"), nil
	}
	return nil, nil
}

func (i *Interpreter) execute(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		_, err := i.evaluate(s.Expression)
		return err

	case *ast.PrintStmt:
		val, err := i.evaluate(s.Expression)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.stdout, value.Stringify(val))
		return nil

	case *ast.VarStmt:
		var val any
		if s.Initializer != nil {
			v, err := i.evaluate(s.Initializer)
			if err != nil {
				return err
			}
			val = v
		}
		i.env.Define(s.Name.Lexeme, val)
		return nil

	case *ast.BlockStmt:
		return i.executeBlock(s.Statements, environment.NewChild(i.env))

	case *ast.IfStmt:
		cond, err := i.evaluate(s.Condition)
		if err != nil {
			return err
		}
		if value.Truthy(cond) {
			return i.execute(s.ThenBranch)
		}
		if s.ElseBranch != nil {
			return i.execute(s.ElseBranch)
		}
		return nil

	case *ast.WhileStmt:
		for {
			cond, err := i.evaluate(s.Condition)
			if err != nil {
				return err
			}
			if !value.Truthy(cond) {
				return nil
			}
			if err := i.execute(s.Body); err != nil {
				return err
			}
		}

	case *ast.FunctionStmt:
		fn := value.NewFunction(s, i.env, false)
		i.env.Define(s.Name.Lexeme, fn)
		return nil

	case *ast.ReturnStmt:
		var val any
		if s.Value != nil {
			v, err := i.evaluate(s.Value)
			if err != nil {
				return err
			}
			val = v
		}
		return &returnSignal{Value: val}

	case *ast.ClassStmt:
		return i.executeClass(s)

	default:
		return nil
	}
}

// executeBlock installs env as the current environment for the
// duration of stmts and restores the prior one on every exit path —
// normal completion, a returnSignal, or a real error — matching
// spec.md §5's scoped-acquisition requirement.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *environment.Environment) error {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, s := range stmts {
		if err := i.execute(s); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) executeClass(s *ast.ClassStmt) error {
	var superclass *value.Class
	if s.Superclass != nil {
		sc, err := i.evaluate(s.Superclass)
		if err != nil {
			return err
		}
		var ok bool
		superclass, ok = sc.(*value.Class)
		if !ok {
			return rerr.New(rerr.Runtime, s.Superclass.Name.Line, "Superclass must be a class.")
		}
	}

	i.env.Define(s.Name.Lexeme, nil)

	methodEnv := i.env
	if s.Superclass != nil {
		methodEnv = environment.NewChild(i.env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*value.Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = value.NewFunction(m, methodEnv, m.Name.Lexeme == "init")
	}

	class := value.NewClass(s.Name.Lexeme, superclass, methods)
	return i.env.Assign(s.Name, class)
}

func (i *Interpreter) evaluate(expr ast.Expr) (any, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return e.Value, nil

	case *ast.Grouping:
		return i.evaluate(e.Expression)

	case *ast.Unary:
		right, err := i.evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		switch e.Operator.Kind {
		case token.MINUS:
			n, ok := right.(float64)
			if !ok {
				return nil, rerr.New(rerr.Runtime, e.Operator.Line, "Operand must be a number.")
			}
			return -n, nil
		case token.BANG:
			return !value.Truthy(right), nil
		}
		return nil, rerr.New(rerr.Runtime, e.Operator.Line, "Unknown unary operator.")

	case *ast.Binary:
		return i.evaluateBinary(e)

	case *ast.Logical:
		left, err := i.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Operator.Kind == token.OR {
			if value.Truthy(left) {
				return left, nil
			}
		} else {
			if !value.Truthy(left) {
				return left, nil
			}
		}
		return i.evaluate(e.Right)

	case *ast.Variable:
		return i.lookupVariable(e.Name, e)

	case *ast.Assign:
		val, err := i.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if distance, ok := i.locals[e.ID()]; ok {
			i.env.AssignAt(distance, e.Name.Lexeme, val)
			return val, nil
		}
		if err := i.Globals.Assign(e.Name, val); err != nil {
			return nil, i.annotateUndefined(err, e.Name.Lexeme)
		}
		return val, nil

	case *ast.Call:
		return i.evaluateCall(e)

	case *ast.Get:
		obj, err := i.evaluate(e.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*value.Instance)
		if !ok {
			return nil, rerr.New(rerr.Runtime, e.Name.Line, "Only instances have properties.")
		}
		return inst.Get(e.Name)

	case *ast.Set:
		obj, err := i.evaluate(e.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*value.Instance)
		if !ok {
			return nil, rerr.New(rerr.Runtime, e.Name.Line, "Only instances have fields.")
		}
		val, err := i.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		inst.Set(e.Name, val)
		return val, nil

	case *ast.This:
		return i.lookupVariable(e.Keyword, e)

	case *ast.Super:
		return i.evaluateSuper(e)

	default:
		return nil, rerr.New(rerr.Runtime, 0, "unknown expression node")
	}
}

func (i *Interpreter) evaluateBinary(e *ast.Binary) (any, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Kind {
	case token.PLUS:
		if lf, ok := left.(float64); ok {
			if rf, ok := right.(float64); ok {
				return lf + rf, nil
			}
		}
		if ls, ok := left.(string); ok {
			if rs, ok := right.(string); ok {
				return ls + rs, nil
			}
		}
		return nil, rerr.New(rerr.Runtime, e.Operator.Line, "Operands must be two numbers or two strings.")

	case token.MINUS:
		lf, rf, err := numberOperands(left, right, e.Operator.Line)
		if err != nil {
			return nil, err
		}
		return lf - rf, nil

	case token.STAR:
		lf, rf, err := numberOperands(left, right, e.Operator.Line)
		if err != nil {
			return nil, err
		}
		return lf * rf, nil

	case token.SLASH:
		lf, rf, err := numberOperands(left, right, e.Operator.Line)
		if err != nil {
			return nil, err
		}
		return lf / rf, nil

	case token.GREATER:
		lf, rf, err := numberOperands(left, right, e.Operator.Line)
		if err != nil {
			return nil, err
		}
		return lf > rf, nil

	case token.GREATER_EQUAL:
		lf, rf, err := numberOperands(left, right, e.Operator.Line)
		if err != nil {
			return nil, err
		}
		return lf >= rf, nil

	case token.LESS:
		lf, rf, err := numberOperands(left, right, e.Operator.Line)
		if err != nil {
			return nil, err
		}
		return lf < rf, nil

	case token.LESS_EQUAL:
		lf, rf, err := numberOperands(left, right, e.Operator.Line)
		if err != nil {
			return nil, err
		}
		return lf <= rf, nil

	case token.BANG_EQUAL:
		return !value.Equal(left, right), nil

	case token.EQUAL_EQUAL:
		return value.Equal(left, right), nil
	}

	return nil, rerr.New(rerr.Runtime, e.Operator.Line, "Unknown binary operator.")
}

func numberOperands(left, right any, line int) (float64, float64, error) {
	lf, lok := left.(float64)
	rf, rok := right.(float64)
	if !lok || !rok {
		return 0, 0, rerr.New(rerr.Runtime, line, "Operands must be numbers.")
	}
	return lf, rf, nil
}

func (i *Interpreter) evaluateCall(e *ast.Call) (any, error) {
	callee, err := i.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}

	arguments := make([]any, len(e.Arguments))
	for idx, a := range e.Arguments {
		v, err := i.evaluate(a)
		if err != nil {
			return nil, err
		}
		arguments[idx] = v
	}

	callable, ok := callee.(value.Callable)
	if !ok {
		return nil, rerr.New(rerr.Runtime, e.Paren.Line, "Can only call functions and classes.")
	}
	if len(arguments) != callable.Arity() {
		return nil, rerr.Newf(rerr.Runtime, e.Paren.Line, "Expected %d arguments but got %d.", callable.Arity(), len(arguments))
	}

	rlog.Debugf("calling %s with %d argument(s)", callable.String(), len(arguments))
	return callable.Call(i, arguments)
}

func (i *Interpreter) evaluateSuper(e *ast.Super) (any, error) {
	distance := i.locals[e.ID()]
	rinvariant.Invariant(distance >= 1, "super resolved at distance %d, 'this' scope must sit one level closer", distance)

	superclass, ok := i.env.GetAt(distance, "super").(*value.Class)
	rinvariant.Invariant(ok, "'super' scope did not hold a *value.Class")
	instance, ok := i.env.GetAt(distance-1, "this").(*value.Instance)
	rinvariant.Invariant(ok, "'this' scope did not hold a *value.Instance")

	method := superclass.FindMethod(e.Method.Lexeme)
	if method == nil {
		return nil, rerr.Newf(rerr.Runtime, e.Method.Line, "Undefined property '%s'.", e.Method.Lexeme)
	}
	return method.Bind(instance), nil
}

// lookupVariable consults the resolver's depth table first; absence
// means the name was never resolved to a local scope and falls back to
// the globals environment, per spec.md §4.5.
func (i *Interpreter) lookupVariable(name token.Token, expr ast.Expr) (any, error) {
	if distance, ok := i.locals[expr.ID()]; ok {
		return i.env.GetAt(distance, name.Lexeme), nil
	}
	val, err := i.Globals.Get(name)
	if err != nil {
		return nil, i.annotateUndefined(err, name.Lexeme)
	}
	return val, nil
}
