// Package repl implements `rill repl`: an interactive session that runs
// each line through the same scan→parse→resolve→eval pipeline as `run`,
// persisting the global environment and resolver state across lines.
//
// Grounded on golox's chzyer/readline-based REPL (golox carries
// chzyer/readline in its go.mod for exactly this purpose).
package repl

import (
	"fmt"
	"io"

	"github.com/chzyer/readline"

	"github.com/aledsdavies/rill/internal/ast"
	"github.com/aledsdavies/rill/internal/interpreter"
	"github.com/aledsdavies/rill/internal/lexer"
	"github.com/aledsdavies/rill/internal/parser"
	"github.com/aledsdavies/rill/internal/resolver"
	"github.com/aledsdavies/rill/internal/rerr"
)

const prompt = "rill> "

// Run starts an interactive session on stdin/stdout, returning when the
// user sends EOF (Ctrl-D). An interrupt (Ctrl-C) discards the current
// line and shows the prompt again. A diagnostic on one
// line never terminates the session; it is printed to stderr and the
// prompt returns.
func Run(stdout, stderr io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: prompt,
		Stdout: stdout,
		Stderr: stderr,
	})
	if err != nil {
		return fmt.Errorf("repl: starting readline: %w", err)
	}
	defer rl.Close()

	session := newSession(stdout)

	for {
		line, err := rl.Readline()
		switch {
		case err == readline.ErrInterrupt:
			continue
		case err == io.EOF:
			return nil
		case err != nil:
			return fmt.Errorf("repl: reading line: %w", err)
		}
		if line == "" {
			continue
		}
		session.eval(line, stderr)
	}
}

// session carries the state that must persist across lines: the
// interpreter's global environment and the accumulated resolver depth
// table, so a variable or function declared on one line is visible on
// the next.
type session struct {
	interp *interpreter.Interpreter
	locals resolver.Locals
}

func newSession(stdout io.Writer) *session {
	return &session{
		interp: interpreter.New(stdout),
		locals: make(resolver.Locals),
	}
}

// eval scans, parses, resolves, and executes one line. If the line is a
// single bare expression (no trailing semicolon, the common REPL
// shorthand), its stringified value is printed automatically, mirroring
// the `evaluate` command.
func (s *session) eval(line string, stderr io.Writer) {
	stmts, autoPrint, err := parseLine(line)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return
	}

	res := resolver.New()
	newLocals, err := res.Resolve(stmts)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return
	}
	for id, depth := range newLocals {
		s.locals[id] = depth
	}
	s.interp.SetLocals(s.locals)
	s.interp.SetSuggester(res.Suggest)

	var runErr error
	if autoPrint {
		runErr = s.interp.InterpretExpr(stmts[0].(*ast.ExpressionStmt).Expression)
	} else {
		runErr = s.interp.InterpretStmts(stmts)
	}
	if runErr != nil {
		printDiagnostic(stderr, runErr)
	}
}

// parseLine parses line as a full statement program. If that fails, it
// retries with a semicolon appended; a single resulting ExpressionStmt
// is reported back for auto-printing.
func parseLine(line string) ([]ast.Stmt, bool, error) {
	stmts, err := parseProgram(line)
	if err == nil {
		return stmts, false, nil
	}

	retried, retryErr := parseProgram(line + ";")
	if retryErr != nil {
		return nil, false, err
	}
	if len(retried) == 1 {
		if _, ok := retried[0].(*ast.ExpressionStmt); ok {
			return retried, true, nil
		}
	}
	return retried, false, nil
}

func parseProgram(source string) ([]ast.Stmt, error) {
	s := lexer.New(source)
	toks := s.ScanTokens()
	if s.HasErrors() {
		return nil, s.Err
	}
	return parser.New(toks).ParseProgram()
}

func printDiagnostic(stderr io.Writer, err error) {
	if re, ok := rerr.As(err); ok {
		fmt.Fprintln(stderr, re.CLIMessage())
		return
	}
	fmt.Fprintln(stderr, err.Error())
}
