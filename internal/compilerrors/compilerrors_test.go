package compilerrors_test

import (
	"strings"
	"testing"

	"github.com/minic-lang/minic/internal/compilerrors"
	"github.com/minic-lang/minic/pkg/token"
)

func TestErrorSingleLineForm(t *testing.T) {
	e := compilerrors.New(compilerrors.Syntax, token.Position{Line: 3, Column: 7}, "unknown symbol y", "", "prog.mc")
	want := "prog.mc:3:7: SyntaxError: unknown symbol y"
	if got := e.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatPointsCaretAtColumn(t *testing.T) {
	src := "defun main() {\n  out y;\n  return 0;\n}"
	e := compilerrors.New(compilerrors.UnresolvedIdentifier, token.Position{Line: 2, Column: 7}, "unknown symbol y", src, "prog.mc")
	out := e.Format()
	lines := strings.Split(out, "\n")
	var sourceLineIdx int
	for i, l := range lines {
		if strings.Contains(l, "out y;") {
			sourceLineIdx = i
			break
		}
	}
	caretLine := lines[sourceLineIdx+1]
	if strings.TrimRight(caretLine, " ")[len(strings.TrimRight(caretLine, " "))-1] != '^' {
		t.Fatalf("caret line %q does not end with ^", caretLine)
	}
}
