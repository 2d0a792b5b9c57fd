package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseScriptReportsUndeclaredIdentifier(t *testing.T) {
	parseEval = "defun main() { out y; return 0; }"
	dumpAST = false

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	err := parseScript(nil, nil)

	w.Close()
	os.Stderr = oldStderr

	if err == nil {
		t.Fatalf("expected an error for an undeclared identifier")
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)
	if !strings.Contains(buf.String(), "UnresolvedIdentifier") {
		t.Errorf("stderr does not mention UnresolvedIdentifier:\n%s", buf.String())
	}
}

func TestParseScriptDumpASTProducesInterchangeForm(t *testing.T) {
	parseEval = "defun main() { return 0; }"
	dumpAST = true

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := parseScript(nil, nil)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("parseScript returned error: %v", err)
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)
	out := buf.String()
	if !strings.Contains(out, "main:FUNC") {
		t.Errorf("dumped AST missing main:FUNC: %s", out)
	}
}
