// Command minic-front is the compiler front-end: it lexes and parses a
// source file, resolves every identifier's scope, and writes the
// resulting AST to the tree interchange format (§6) for minic-back to
// consume.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minic-lang/minic/internal/cliconfig"
	"github.com/minic-lang/minic/internal/clilog"
	"github.com/minic-lang/minic/internal/compilerrors"
	"github.com/minic-lang/minic/internal/interchange"
	"github.com/minic-lang/minic/internal/lexer"
	"github.com/minic-lang/minic/internal/parser"
	"github.com/minic-lang/minic/pkg/token"
)

var (
	inPath  string
	outPath string
	logPath string
	format  string
)

var rootCmd = &cobra.Command{
	Use:          "minic-front",
	Short:        "Lex, parse and scope-resolve a minic source file",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&inPath, "in", "", "input source file (required)")
	rootCmd.Flags().StringVar(&outPath, "out", "", "output tree-interchange file (required)")
	rootCmd.Flags().StringVar(&logPath, "log", "", "per-run log file (required)")
	rootCmd.Flags().StringVar(&format, "format", "tree", "output format: tree (interchange) or json")
	rootCmd.MarkFlagRequired("in")
	rootCmd.MarkFlagRequired("out")
	rootCmd.MarkFlagRequired("log")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if cfg, err := cliconfig.LoadNearest("."); err == nil {
		inPath, outPath, logPath, _ = cfg.ApplyDefaults(inPath, outPath, logPath, "")
	}

	logger, err := clilog.Open(logPath)
	if err != nil {
		return fmt.Errorf("cannot open log file %s: %w", logPath, err)
	}
	defer logger.Close()

	source, err := os.ReadFile(inPath)
	if err != nil {
		logger.Printf("cannot open input %s: %v", inPath, err)
		return reportIO(inPath, err)
	}
	src := string(source)

	tokens, _, err := lexer.Lex(src)
	if err != nil {
		lexErr := err.(*lexer.Error)
		logger.Printf("lexical error at %s", lexErr.Pos)
		return report(compilerrors.New(compilerrors.Lexical, lexErr.Pos, lexErr.Message, src, inPath))
	}

	tree, err := parser.Parse(tokens)
	if err != nil {
		synErr := err.(*parser.SyntaxError)
		logger.Printf("syntax error at %s", synErr.Pos)
		kind := compilerrors.Syntax
		msg := fmt.Sprintf("expected %s, got %s", synErr.Expected, synErr.Got)
		if synErr.Expected == "a declared variable, parameter or function" {
			kind = compilerrors.UnresolvedIdentifier
			msg = fmt.Sprintf("unknown symbol %s", synErr.Got.Literal)
		}
		return report(compilerrors.New(kind, synErr.Pos, msg, src, inPath))
	}

	out, err := os.Create(outPath)
	if err != nil {
		logger.Printf("cannot open output %s: %v", outPath, err)
		return reportIO(outPath, err)
	}
	defer out.Close()

	writeTree := interchange.Write
	if format == "json" {
		writeTree = interchange.WriteJSON
	}
	if err := writeTree(tree, out); err != nil {
		logger.Printf("write error: %v", err)
		os.Remove(outPath)
		return reportIO(outPath, err)
	}

	logger.Printf("compiled %s -> %s", inPath, outPath)
	return nil
}

func report(e *compilerrors.CompilerError) error {
	fmt.Fprintln(os.Stderr, e.Error())
	return e
}

func reportIO(path string, cause error) error {
	return report(compilerrors.New(compilerrors.IO, token.Position{}, cause.Error(), "", path))
}
