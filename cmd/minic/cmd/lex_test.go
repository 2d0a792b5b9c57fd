package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLexScriptPrintsEveryToken(t *testing.T) {
	evalExpr = "defun main() { return 0; }"
	showPos = false

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := lexScript(nil, nil)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("lexScript returned error: %v", err)
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)
	out := buf.String()

	for _, want := range []string{"DEFUN", "IDENT", "LPAREN", "RETURN", "TERMINATOR"} {
		if !strings.Contains(out, want) {
			t.Errorf("lex output missing %q:\n%s", want, out)
		}
	}
}

func TestLexScriptReportsIllegalCharacter(t *testing.T) {
	evalExpr = "defun main() { out @; }"
	showPos = false

	err := lexScript(nil, nil)
	if err == nil {
		t.Fatalf("expected a lexical error, got none")
	}
	if !strings.Contains(err.Error(), "unrecognized character") {
		t.Errorf("error %q does not mention the unrecognized character", err.Error())
	}
}

func TestReadSourceRequiresFileOrEval(t *testing.T) {
	_, _, err := readSource("", nil)
	if err == nil {
		t.Fatalf("expected an error when neither a file nor -e is given")
	}
}
