package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minic-lang/minic/internal/codegen"
	"github.com/minic-lang/minic/internal/isa"
)

var (
	compileEval    string
	outputFile     string
	isaDialect     string
	compileVerbose bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a source file straight to stack-machine assembly",
	Long: `Compile a minic program directly to assembly, skipping the
tree-interchange file minic-front/minic-back communicate across.

Examples:
  minic compile program.mc
  minic compile program.mc -o program.asm
  minic compile --isa dialect.toml program.mc`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: <input>.asm)")
	compileCmd.Flags().StringVar(&isaDialect, "isa", "", "optional TOML mnemonic dialect override")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func compileScript(cmd *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	tree, cerr := lexAndParse(string(content), filename)
	if cerr != nil {
		fmt.Fprintln(os.Stderr, cerr.Format())
		return fmt.Errorf("compilation failed")
	}

	set := isa.Default
	if isaDialect != "" {
		set, err = isa.LoadTOML(isaDialect)
		if err != nil {
			return fmt.Errorf("failed to load isa dialect %s: %w", isaDialect, err)
		}
	}

	outFile := outputFile
	if outFile == "" {
		ext := filepath.Ext(filename)
		if ext != "" {
			outFile = strings.TrimSuffix(filename, ext) + ".asm"
		} else {
			outFile = filename + ".asm"
		}
	}

	out, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", outFile, err)
	}
	defer out.Close()

	if err := codegen.Generate(tree, set, out); err != nil {
		os.Remove(outFile)
		return fmt.Errorf("code generation failed: %w", err)
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiled %s -> %s (%d function scope(s))\n", filename, outFile, len(tree.Scopes)-1)
	} else {
		fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	}
	return nil
}
