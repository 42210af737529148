// Package value implements the runtime value model: the tagged union of
// Nil/Bool/Number/String (represented directly as Go nil/bool/float64/
// string, following the teacher's any-typed ResolveResult.Value
// convention in core/decorator/value.go) plus the three Callable
// variants — native functions, user functions/closures, and classes —
// and instances.
package value

import (
	"fmt"

	"github.com/aledsdavies/rill/internal/ast"
	"github.com/aledsdavies/rill/internal/environment"
	"github.com/aledsdavies/rill/internal/rerr"
	"github.com/aledsdavies/rill/internal/token"
)

// Interpreter is the narrow slice of evaluator behavior a Callable needs
// to invoke a user function's body. Defined here (rather than importing
// the interpreter package, which itself must import value) to break the
// otherwise-circular dependency between "how a call executes" and "what a
// callable value is".
type Interpreter interface {
	CallFunction(fn *Function, arguments []any) (any, error)
}

// Callable is implemented by every value that can appear as the callee of
// a Call expression: native functions, user functions, and classes.
type Callable interface {
	Arity() int
	Call(interp Interpreter, arguments []any) (any, error)
	String() string
}

// NativeFunction wraps a Go function as a callable language value. The
// sole required native is clock(); str and type are additive (SPEC_FULL
// §4.5).
type NativeFunction struct {
	Name    string
	ArityN  int
	Fn      func(arguments []any) (any, error)
}

func (n *NativeFunction) Arity() int { return n.ArityN }

func (n *NativeFunction) Call(_ Interpreter, arguments []any) (any, error) {
	return n.Fn(arguments)
}

func (n *NativeFunction) String() string { return "<native fn>" }

// Function is a user-defined function or method: a declaration paired
// with the environment that was current at definition time (its
// closure). Calling it is delegated to the Interpreter, which knows how
// to execute a statement block and catch a Return signal.
type Function struct {
	Declaration   *ast.FunctionStmt
	Closure       *environment.Environment
	IsInitializer bool
}

func NewFunction(decl *ast.FunctionStmt, closure *environment.Environment, isInitializer bool) *Function {
	return &Function{Declaration: decl, Closure: closure, IsInitializer: isInitializer}
}

func (f *Function) Arity() int { return len(f.Declaration.Params) }

func (f *Function) Call(interp Interpreter, arguments []any) (any, error) {
	return interp.CallFunction(f, arguments)
}

func (f *Function) String() string { return fmt.Sprintf("<fn %s>", f.Declaration.Name.Lexeme) }

// Bind returns a new Function whose closure is a fresh child environment
// with `this` bound to instance, and the receiver's closure as parent —
// the only allocation method binding requires (SPEC_FULL's design notes on
// avoiding unbounded bound-method allocation apply at the call site, which
// re-binds on each property access rather than caching).
func (f *Function) Bind(instance *Instance) *Function {
	env := environment.NewChild(f.Closure)
	env.Define("this", instance)
	return NewFunction(f.Declaration, env, f.IsInitializer)
}

// Class is a class value: a name, optional superclass, and a method
// table. Method lookup walks the superclass chain.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func NewClass(name string, superclass *Class, methods map[string]*Function) *Class {
	return &Class{Name: name, Superclass: superclass, Methods: methods}
}

func (c *Class) FindMethod(name string) *Function {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

// Arity is the arity of `init`, or 0 if the class declares none.
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

func (c *Class) Call(interp Interpreter, arguments []any) (any, error) {
	instance := NewInstance(c)
	if init := c.FindMethod("init"); init != nil {
		if _, err := interp.CallFunction(init.Bind(instance), arguments); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (c *Class) String() string { return c.Name }

// Instance is a reference to its class plus a mutable field map.
// Instance identity is by reference.
type Instance struct {
	Class  *Class
	Fields map[string]any
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]any)}
}

func (i *Instance) String() string { return i.Class.Name + " instance" }

// Get looks up a property: a field wins over a method; a method is
// returned bound to this instance.
func (i *Instance) Get(name token.Token) (any, error) {
	if v, ok := i.Fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := i.Class.FindMethod(name.Lexeme); m != nil {
		return m.Bind(i), nil
	}
	return nil, rerr.Newf(rerr.Runtime, name.Line, "Undefined property '%s'.", name.Lexeme)
}

func (i *Instance) Set(name token.Token, val any) {
	i.Fields[name.Lexeme] = val
}

// Truthy projects a value onto a boolean: Nil and Bool(false) are falsy,
// everything else — including Number(0) and the empty string — is truthy.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// Equal implements == / != semantics: values of different variants are
// unequal, Nil == Nil is true, booleans/numbers/strings compare by value,
// and Go's IEEE-754 float64 equality already makes NaN unequal to itself.
func Equal(a, b any) bool {
	return a == b
}

// Stringify produces the canonical textual form of a runtime value, as
// used by `print` and the `evaluate` command.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(val)
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%g", f)
}

// TypeName reports the type-tag string used by the additive type()
// native.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *Class:
		return "class"
	case *Instance:
		return "instance"
	case *Function, *NativeFunction:
		return "function"
	default:
		return "unknown"
	}
}
