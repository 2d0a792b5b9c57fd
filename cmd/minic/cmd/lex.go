package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minic-lang/minic/internal/lexer"
)

var (
	evalExpr string
	showPos  bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a source file and print the resulting tokens",
	Long: `Tokenize (lex) a minic program and print the resulting tokens.

Examples:
  minic lex program.mc
  minic lex --show-pos program.mc
  minic lex -e "defun main() { return 0; }"`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline code instead of reading from a file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
}

func lexScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	tokens, idents, err := lexer.Lex(input)
	if err != nil {
		lexErr := err.(*lexer.Error)
		return fmt.Errorf("%s:%s: %s", filename, lexErr.Pos, lexErr.Message)
	}

	for _, tok := range tokens {
		if showPos {
			fmt.Printf("%-12s %-16q @%s\n", tok.Type, tok.Literal, tok.Pos)
		} else {
			fmt.Printf("%-12s %q\n", tok.Type, tok.Literal)
		}
	}
	fmt.Fprintf(os.Stderr, "%d tokens, %d identifier occurrences interned\n", len(tokens), len(idents.Entries()))
	return nil
}

// readSource resolves the -e/--eval flag against a positional file
// argument the same way across the lex and parse subcommands.
func readSource(eval string, args []string) (input, filename string, err error) {
	if eval != "" {
		return eval, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline code")
}
