// Command minic-back is the compiler back-end: it reads a scope-resolved
// AST from the tree interchange format (§6) and emits stack-machine
// assembly (§4.3), optionally under an alternate mnemonic dialect loaded
// from a TOML file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minic-lang/minic/internal/cliconfig"
	"github.com/minic-lang/minic/internal/clilog"
	"github.com/minic-lang/minic/internal/codegen"
	"github.com/minic-lang/minic/internal/compilerrors"
	"github.com/minic-lang/minic/internal/interchange"
	"github.com/minic-lang/minic/internal/isa"
	"github.com/minic-lang/minic/pkg/token"
)

var (
	inPath  string
	outPath string
	logPath string
	isaPath string
)

var rootCmd = &cobra.Command{
	Use:          "minic-back",
	Short:        "Generate stack-machine assembly from a tree-interchange file",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&inPath, "in", "", "input tree-interchange file (required)")
	rootCmd.Flags().StringVar(&outPath, "out", "", "output assembly file (required)")
	rootCmd.Flags().StringVar(&logPath, "log", "", "per-run log file (required)")
	rootCmd.Flags().StringVar(&isaPath, "isa", "", "optional TOML mnemonic dialect override")
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
		var dialect string
		inPath, outPath, logPath, dialect = cfg.ApplyDefaults(inPath, outPath, logPath, isaPath)
		if isaPath == "" {
			isaPath = dialect
		}
	}

	logger, err := clilog.Open(logPath)
	if err != nil {
		return fmt.Errorf("cannot open log file %s: %w", logPath, err)
	}
	defer logger.Close()

	set := isa.Default
	if isaPath != "" {
		set, err = isa.LoadTOML(isaPath)
		if err != nil {
			logger.Printf("cannot load isa dialect %s: %v", isaPath, err)
			return reportIO(isaPath, err)
		}
	}

	in, err := os.Open(inPath)
	if err != nil {
		logger.Printf("cannot open input %s: %v", inPath, err)
		return reportIO(inPath, err)
	}
	defer in.Close()

	tree, err := interchange.Read(in)
	if err != nil {
		logger.Printf("malformed tree interchange: %v", err)
		return reportIO(inPath, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		logger.Printf("cannot open output %s: %v", outPath, err)
		return reportIO(outPath, err)
	}
	defer out.Close()

	if err := codegen.Generate(tree, set, out); err != nil {
		logger.Printf("codegen error: %v", err)
		os.Remove(outPath)
		return reportIO(outPath, err)
	}

	logger.Printf("assembled %s -> %s", inPath, outPath)
	return nil
}

func reportIO(path string, cause error) error {
	e := compilerrors.New(compilerrors.IO, token.Position{}, cause.Error(), "", path)
	fmt.Fprintln(os.Stderr, e.Error())
	return e
}
