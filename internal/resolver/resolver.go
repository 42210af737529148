// Package resolver performs the single pre-execution pass that resolves
// each variable reference to a static scope depth and enforces the
// static semantic rules spec.md §4.3 describes (reading a local in its
// own initializer, `this`/`super` outside a class, returning from
// top-level code, self-inheriting classes).
package resolver

import (
	"github.com/aledsdavies/rill/internal/ast"
	"github.com/aledsdavies/rill/internal/rerr"
	"github.com/aledsdavies/rill/internal/suggest"
	"github.com/aledsdavies/rill/internal/token"
)

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classKind int

const (
	classNone classKind = iota
	classClass
	classSubclass
)

// Locals maps an expression node's identity (ast.Expr.ID()) to the static
// scope distance computed for it. Absence means "global".
type Locals map[int]int

// scope maps an identifier to whether it has finished being defined:
// false = declared but the initializer has not finished resolving yet.
type scope map[string]bool

// Resolver walks a parsed program once, before evaluation.
type Resolver struct {
	scopes          []scope
	locals          Locals
	currentFunction functionKind
	currentClass    classKind
	knownNames      map[string]bool // every name ever declared, for "did you mean"
}

func New() *Resolver {
	return &Resolver{
		locals:     make(Locals),
		knownNames: make(map[string]bool),
	}
}

// Resolve walks the full statement list and returns the completed Locals
// table, or the first static-rule violation encountered.
func (r *Resolver) Resolve(statements []ast.Stmt) (Locals, error) {
	if err := r.resolveStmts(statements); err != nil {
		return nil, err
	}
	return r.locals, nil
}

func (r *Resolver) resolveStmts(statements []ast.Stmt) error {
	for _, s := range statements {
		if err := r.resolveStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveStmt(s ast.Stmt) error {
	switch stmt := s.(type) {
	case *ast.BlockStmt:
		r.beginScope()
		err := r.resolveStmts(stmt.Statements)
		r.endScope()
		return err

	case *ast.VarStmt:
		if err := r.declare(stmt.Name); err != nil {
			return err
		}
		if stmt.Initializer != nil {
			if err := r.resolveExpr(stmt.Initializer); err != nil {
				return err
			}
		}
		r.define(stmt.Name.Lexeme)
		return nil

	case *ast.FunctionStmt:
		r.declareAndDefine(stmt.Name.Lexeme)
		return r.resolveFunction(stmt, fnFunction)

	case *ast.ExpressionStmt:
		return r.resolveExpr(stmt.Expression)

	case *ast.IfStmt:
		if err := r.resolveExpr(stmt.Condition); err != nil {
			return err
		}
		if err := r.resolveStmt(stmt.ThenBranch); err != nil {
			return err
		}
		if stmt.ElseBranch != nil {
			return r.resolveStmt(stmt.ElseBranch)
		}
		return nil

	case *ast.PrintStmt:
		return r.resolveExpr(stmt.Expression)

	case *ast.ReturnStmt:
		if r.currentFunction == fnNone {
			return rerr.New(rerr.Resolve, stmt.Keyword.Line, "Can't return from top-level code.")
		}
		if stmt.Value != nil {
			if r.currentFunction == fnInitializer {
				return rerr.New(rerr.Resolve, stmt.Keyword.Line, "Can't return a value from an initializer.")
			}
			return r.resolveExpr(stmt.Value)
		}
		return nil

	case *ast.WhileStmt:
		if err := r.resolveExpr(stmt.Condition); err != nil {
			return err
		}
		return r.resolveStmt(stmt.Body)

	case *ast.ClassStmt:
		return r.resolveClass(stmt)

	default:
		return nil
	}
}

func (r *Resolver) resolveClass(stmt *ast.ClassStmt) error {
	enclosingClass := r.currentClass
	r.currentClass = classClass
	defer func() { r.currentClass = enclosingClass }()

	r.declareAndDefine(stmt.Name.Lexeme)

	if stmt.Superclass != nil {
		if stmt.Superclass.Name.Lexeme == stmt.Name.Lexeme {
			return rerr.New(rerr.Resolve, stmt.Superclass.Name.Line, "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		if err := r.resolveExpr(stmt.Superclass); err != nil {
			return err
		}
		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
		defer r.endScope()
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true
	defer r.endScope()

	for _, method := range stmt.Methods {
		kind := fnMethod
		if method.Name.Lexeme == "init" {
			kind = fnInitializer
		}
		if err := r.resolveFunction(method, kind); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStmt, kind functionKind) error {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind
	defer func() { r.currentFunction = enclosingFunction }()

	r.beginScope()
	defer r.endScope()

	for _, param := range fn.Params {
		if err := r.declare(param); err != nil {
			return err
		}
		r.define(param.Lexeme)
	}
	return r.resolveStmts(fn.Body)
}

func (r *Resolver) resolveExpr(e ast.Expr) error {
	switch expr := e.(type) {
	case *ast.Literal:
		return nil

	case *ast.Grouping:
		return r.resolveExpr(expr.Expression)

	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, declared := r.scopes[len(r.scopes)-1][expr.Name.Lexeme]; declared && !defined {
				return rerr.New(rerr.Resolve, expr.Name.Line, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(expr, expr.ID(), expr.Name.Lexeme)
		return nil

	case *ast.Assign:
		if err := r.resolveExpr(expr.Value); err != nil {
			return err
		}
		r.resolveLocal(expr, expr.ID(), expr.Name.Lexeme)
		return nil

	case *ast.Binary:
		if err := r.resolveExpr(expr.Left); err != nil {
			return err
		}
		return r.resolveExpr(expr.Right)

	case *ast.Logical:
		if err := r.resolveExpr(expr.Left); err != nil {
			return err
		}
		return r.resolveExpr(expr.Right)

	case *ast.Unary:
		return r.resolveExpr(expr.Right)

	case *ast.Call:
		if err := r.resolveExpr(expr.Callee); err != nil {
			return err
		}
		for _, a := range expr.Arguments {
			if err := r.resolveExpr(a); err != nil {
				return err
			}
		}
		return nil

	case *ast.Get:
		return r.resolveExpr(expr.Object)

	case *ast.Set:
		if err := r.resolveExpr(expr.Value); err != nil {
			return err
		}
		return r.resolveExpr(expr.Object)

	case *ast.This:
		if r.currentClass == classNone {
			return rerr.New(rerr.Resolve, expr.Keyword.Line, "Can't use 'this' outside of a class.")
		}
		r.resolveLocal(expr, expr.ID(), "this")
		return nil

	case *ast.Super:
		if r.currentClass == classNone {
			return rerr.New(rerr.Resolve, expr.Keyword.Line, "Can't use 'super' outside of a class.")
		}
		if r.currentClass != classSubclass {
			return rerr.New(rerr.Resolve, expr.Keyword.Line, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(expr, expr.ID(), "super")
		return nil

	default:
		return nil
	}
}

func (r *Resolver) resolveLocal(expr ast.Expr, id int, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[id] = len(r.scopes) - 1 - i
			return
		}
	}
	// Not found in any scope: treat as global, recorded by absence.
}

// declare adds name to the innermost scope as "not yet defined". It is a
// no-op at the (implicit, unrepresented) global scope. Redeclaring a name
// already present in the same frame is a static error.
func (r *Resolver) declare(name token.Token) error {
	if len(r.scopes) == 0 {
		return nil
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name.Lexeme]; exists {
		return rerr.New(rerr.Resolve, name.Line, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
	return nil
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(scope))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declareAndDefine marks name as immediately defined in the current
// scope, skipping the "declared but not yet defined" window — used for
// function and class names so the body can reference its own name
// recursively.
func (r *Resolver) declareAndDefine(name string) {
	r.knownNames[name] = true
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

func (r *Resolver) define(name string) {
	r.knownNames[name] = true
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

// KnownNames exposes every identifier declared during resolution, for the
// suggest package's "did you mean" lookups at runtime.
func (r *Resolver) KnownNames() []string {
	names := make([]string, 0, len(r.knownNames))
	for n := range r.knownNames {
		names = append(names, n)
	}
	return names
}

// Suggest returns a nearby known name for typo hints, or "" if none is
// close enough. Thin wrapper kept here so callers don't need to import
// the suggest package directly.
func (r *Resolver) Suggest(name string) string {
	return suggest.Nearest(name, r.KnownNames())
}
