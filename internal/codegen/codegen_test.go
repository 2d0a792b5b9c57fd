package codegen_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/minic-lang/minic/internal/codegen"
	"github.com/minic-lang/minic/internal/isa"
	"github.com/minic-lang/minic/internal/lexer"
	"github.com/minic-lang/minic/internal/parser"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	toks, _, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	tree, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var buf bytes.Buffer
	if err := codegen.Generate(tree, isa.Default, &buf); err != nil {
		t.Fatalf("codegen error: %v", err)
	}
	return buf.String()
}

// TestS1ArithmeticAndOut covers scenario S1: 2 + 3 * 4 compiles to
// PUSH/PUSH/PUSH/MUL/ADD in that order, honoring `*` over `+` via the
// sum/mul grammar levels, then OUT.
func TestS1ArithmeticAndOut(t *testing.T) {
	out := generate(t, "defun main() { out 2 + 3 * 4; return 0; }")
	for _, want := range []string{"PUSH 2", "PUSH 3", "PUSH 4", "MUL", "ADD", "OUT"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	mulIdx := strings.Index(out, "MUL")
	// The function prologue also emits an ADD (frame enlargement), so the
	// expression's ADD is the last one in the output.
	addIdx := strings.LastIndex(out, "ADD")
	if mulIdx < 0 || addIdx < 0 || mulIdx > addIdx {
		t.Errorf("expected MUL before ADD (3*4 evaluated before +):\n%s", out)
	}
	snaps.MatchSnapshot(t, out)
}

func TestS2IfElseComparisonIdiom(t *testing.T) {
	out := generate(t, "defun main() { x = 5; if x > 3 { out 1; } else { out 0; } return 0; }")
	for _, want := range []string{"JA", "JE :else_0", "JMP :endif_0", ":else_0", ":endif_0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	snaps.MatchSnapshot(t, out)
}

func TestS3WhileLoop(t *testing.T) {
	out := generate(t, "defun main() { i = 0; while i < 5 { out i; i = i + 1; } return 0; }")
	for _, want := range []string{":beginwhile_0", ":endwhile_0", "JB", "JE :endwhile_0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	snaps.MatchSnapshot(t, out)
}

func TestS4FunctionCallArgumentAddressing(t *testing.T) {
	out := generate(t, "defun add(a,b) { return a + b; } defun main() { out add(7, 35); return 0; }")
	for _, want := range []string{
		"PUSH 7", "POPM [SP+2]",
		"PUSH 35", "POPM [SP+1]",
		"CALL :func_add", "PUSHR A0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	snaps.MatchSnapshot(t, out)
}

func TestLabelsAreUniqueAcrossMultipleConstructs(t *testing.T) {
	out := generate(t, `defun main() {
		i = 0;
		while i < 5 { out i; i = i + 1; }
		while i < 10 { out i; i = i + 1; }
		if i > 3 { out 1; } else { out 0; }
		if i > 9 { out 1; } else { out 0; }
		return 0;
	}`)
	labels := map[string]int{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, ":") {
			labels[line]++
		}
	}
	for label, count := range labels {
		if count != 1 {
			t.Errorf("label %q emitted %d times, want exactly 1", label, count)
		}
	}
}

func TestEntryPrologueIsFixed(t *testing.T) {
	out := generate(t, "defun main() { return 0; }")
	want := "CALL :func_main\nPUSHR A0\nOUT\nHLT\n"
	if !strings.HasPrefix(out, want) {
		t.Fatalf("output does not start with the fixed entry prologue:\n%s", out)
	}
}
