// Package cmd implements minic, a development-convenience binary that
// chains the lexer, parser and code generator in-process — without the
// tree-interchange file boundary minic-front/minic-back communicate
// across — for quick inspection of a single compile.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "minic",
	Short: "A stack-machine toy-language compiler",
	Long: `minic lexes, parses and compiles the stack-machine toy language
described by its grammar: function declarations, while/if control flow,
and a fixed arithmetic/comparison expression grammar.

This binary is a development convenience: "lex", "parse" and "compile"
run the same internal/lexer, internal/parser, internal/isa and
internal/codegen packages the minic-front/minic-back pipeline uses, but
in a single process with no tree-interchange file in between.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("minic version {{.Version}}\nCommit: %s\n", GitCommit))
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
