// Command rill is the CLI driver for the tree-walking interpreter:
// tokenize | parse | evaluate | run | repl, grounded on the teacher's
// cobra-based cli/main.go harness and golox's command layout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/rill/internal/rlog"
)

var (
	debugFlag   bool
	noColorFlag bool
	exitCode    int
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rill",
		Short:         "A tree-walking interpreter for the rill scripting language",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			rlog.SetDebug(debugFlag)
		},
	}

	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug trace logging")
	root.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored diagnostic output")

	root.AddCommand(
		newTokenizeCmd(),
		newParseCmd(),
		newEvaluateCmd(),
		newRunCmd(),
		newReplCmd(),
	)

	return root
}
