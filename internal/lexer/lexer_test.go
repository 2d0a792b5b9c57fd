package lexer_test

import (
	"testing"

	"github.com/minic-lang/minic/internal/lexer"
	"github.com/minic-lang/minic/pkg/token"
)

func typesOf(t *testing.T, toks []token.Token) []token.Type {
	t.Helper()
	types := make([]token.Type, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestLexOperatorsPreferLongerLiterals(t *testing.T) {
	toks, _, err := lexer.Lex("a == b != c >= d <= e = f")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := typesOf(t, toks)
	want := []token.Type{
		token.IDENT, token.EQ, token.IDENT,
		token.NEQ, token.IDENT,
		token.GEQ, token.IDENT,
		token.LEQ, token.IDENT,
		token.ASSIGN, token.IDENT,
		token.TERMINATOR,
	}
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexKeywordBoundary(t *testing.T) {
	toks, _, err := lexer.Lex("ifdef(x)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Type != token.IDENT || toks[0].Literal != "ifdef" {
		t.Fatalf("got %v, want a single IDENT ifdef (keyword must not match as a prefix)", toks[0])
	}
}

func TestLexNumberValue(t *testing.T) {
	toks, _, err := lexer.Lex("42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Type != token.NUM || toks[0].IntValue != 42 {
		t.Fatalf("got %v, want NUM(42)", toks[0])
	}
}

func TestLexIdentifierInterningIsPerOccurrence(t *testing.T) {
	_, idents, err := lexer.Lex("x x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := idents.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d interned entries, want 2 (one per occurrence)", len(entries))
	}
	if entries[0].ID == entries[1].ID {
		t.Fatalf("expected distinct ids for distinct occurrences, got %d and %d", entries[0].ID, entries[1].ID)
	}
	if entries[0].Name != entries[1].Name {
		t.Fatalf("expected equal names, got %q and %q", entries[0].Name, entries[1].Name)
	}
}

func TestLexPositionsAreMonotonic(t *testing.T) {
	toks, _, err := lexer.Lex("defun f(x) {\n  return x + 1;\n}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(toks); i++ {
		if !toks[i-1].Pos.Less(toks[i].Pos) && toks[i-1].Pos != toks[i].Pos {
			t.Errorf("position went backwards: %s then %s", toks[i-1].Pos, toks[i].Pos)
		}
	}
}

func TestLexIllegalCharacter(t *testing.T) {
	_, _, err := lexer.Lex("a $ b")
	if err == nil {
		t.Fatal("expected a lexical error for '$'")
	}
	var lexErr *lexer.Error
	if !asLexError(err, &lexErr) {
		t.Fatalf("expected *lexer.Error, got %T", err)
	}
	if lexErr.Pos.Column != 3 {
		t.Errorf("error column = %d, want 3", lexErr.Pos.Column)
	}
}

func asLexError(err error, target **lexer.Error) bool {
	if e, ok := err.(*lexer.Error); ok {
		*target = e
		return true
	}
	return false
}
