package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/rill/internal/ast"
	"github.com/aledsdavies/rill/internal/interpreter"
	"github.com/aledsdavies/rill/internal/lexer"
	"github.com/aledsdavies/rill/internal/parser"
	"github.com/aledsdavies/rill/internal/repl"
	"github.com/aledsdavies/rill/internal/resolver"
	"github.com/aledsdavies/rill/internal/rerr"
	"github.com/aledsdavies/rill/internal/token"
	"github.com/aledsdavies/rill/internal/watch"
)

func newTokenizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize <filename>",
		Short: "Scan a file and print one token per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				exitCode = 1
				return err
			}

			tokens, lexErrs := scanTokens(string(source))
			if lexErrs != nil {
				reportLexErrors(lexErrs)
				exitCode = rerr.Lex.ExitCode()
				return nil
			}

			for _, t := range tokens {
				fmt.Println(t.String())
			}
			return nil
		},
	}
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <filename>",
		Short: "Parse a single expression and print its s-expression form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				exitCode = 1
				return err
			}

			tokens, lexErrs := scanTokens(string(source))
			if lexErrs != nil {
				reportLexErrors(lexErrs)
				exitCode = rerr.Lex.ExitCode()
				return nil
			}

			expr, err := parser.New(tokens).ParseExpression()
			if err != nil {
				exitCode = reportError(err)
				return nil
			}

			fmt.Println(ast.Print(expr))
			return nil
		},
	}
}

func newEvaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <filename>",
		Short: "Parse a single expression, evaluate it, and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				exitCode = 1
				return err
			}

			tokens, lexErrs := scanTokens(string(source))
			if lexErrs != nil {
				reportLexErrors(lexErrs)
				exitCode = rerr.Lex.ExitCode()
				return nil
			}

			expr, err := parser.New(tokens).ParseExpression()
			if err != nil {
				exitCode = reportError(err)
				return nil
			}

			interp := interpreter.New(os.Stdout)
			if err := interp.InterpretExpr(expr); err != nil {
				exitCode = reportError(err)
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var watchFlag bool

	cmd := &cobra.Command{
		Use:   "run <filename>",
		Short: "Tokenize, parse, resolve, and execute a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			if watchFlag {
				return watch.Run(filename, func(source []byte) {
					exitCode = runSource(string(source))
				})
			}

			source, err := os.ReadFile(filename)
			if err != nil {
				exitCode = 1
				return err
			}
			exitCode = runSource(string(source))
			return nil
		},
	}

	cmd.Flags().BoolVar(&watchFlag, "watch", false, "re-run the file whenever it changes on disk")
	return cmd
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive read-eval-print loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return repl.Run(os.Stdout, os.Stderr)
		},
	}
}

// runSource executes one full program and returns the process exit code
// it should yield, printing any diagnostic to stderr along the way.
func runSource(source string) int {
	tokens, lexErrs := scanTokens(source)
	if lexErrs != nil {
		reportLexErrors(lexErrs)
		return rerr.Lex.ExitCode()
	}

	stmts, err := parser.New(tokens).ParseProgram()
	if err != nil {
		return reportError(err)
	}

	res := resolver.New()
	locals, err := res.Resolve(stmts)
	if err != nil {
		return reportError(err)
	}

	interp := interpreter.New(os.Stdout)
	interp.SetLocals(locals)
	interp.SetSuggester(res.Suggest)

	if err := interp.InterpretStmts(stmts); err != nil {
		return reportError(err)
	}
	return 0
}

// scanTokens scans source and returns either the resulting token stream
// or the list of collected lexical errors, never both.
func scanTokens(source string) ([]token.Token, []error) {
	s := lexer.New(source)
	tokens := s.ScanTokens()
	if s.HasErrors() {
		errs := make([]error, 0, len(s.Err.Errors))
		for _, e := range s.Err.Errors {
			errs = append(errs, e)
		}
		return nil, errs
	}
	return tokens, nil
}

func reportLexErrors(errs []error) {
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e.Error())
	}
}

// reportError prints a *rerr.Error's CLI-formatted diagnostic (or a bare
// error's message) to stderr and returns the exit code it maps to.
func reportError(err error) int {
	if re, ok := rerr.As(err); ok {
		fmt.Fprintln(os.Stderr, re.CLIMessage())
		return re.Kind.ExitCode()
	}
	fmt.Fprintln(os.Stderr, err.Error())
	return 1
}
