package ast

import (
	"fmt"
	"strings"
)

// Print renders an expression in the s-expression form used by the
// `parse` command.
func Print(e Expr) string {
	switch n := e.(type) {
	case *Literal:
		return stringifyLiteral(n.Value)
	case *Grouping:
		return parenthesize("group", n.Expression)
	case *Unary:
		return parenthesize(n.Operator.Lexeme, n.Right)
	case *Binary:
		return parenthesize(n.Operator.Lexeme, n.Left, n.Right)
	case *Logical:
		return parenthesize(n.Operator.Lexeme, n.Left, n.Right)
	case *Variable:
		return n.Name.Lexeme
	case *Assign:
		return parenthesize("= "+n.Name.Lexeme, n.Value)
	case *Call:
		parts := []string{"call", Print(n.Callee)}
		args := make([]string, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = Print(a)
		}
		return "(" + strings.Join(parts, " ") + " [" + strings.Join(args, ", ") + "])"
	case *Get:
		return parenthesize("."+n.Name.Lexeme, n.Object)
	case *Set:
		return parenthesize("="+n.Name.Lexeme, n.Object, n.Value)
	case *This:
		return "this"
	case *Super:
		return "super." + n.Method.Lexeme
	default:
		return fmt.Sprintf("<unknown expr %T>", e)
	}
}

func parenthesize(name string, exprs ...Expr) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(name)
	for _, e := range exprs {
		b.WriteByte(' ')
		b.WriteString(Print(e))
	}
	b.WriteByte(')')
	return b.String()
}

func stringifyLiteral(v any) string {
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
	default:
		return fmt.Sprintf("%v", val)
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%.1f", f)
	}
	return fmt.Sprintf("%g", f)
}
