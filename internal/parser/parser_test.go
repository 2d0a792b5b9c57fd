package parser_test

import (
	"testing"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/lexer"
	"github.com/minic-lang/minic/internal/parser"
	"github.com/minic-lang/minic/pkg/token"
)

func mustParse(t *testing.T, src string) *ast.Tree {
	t.Helper()
	toks, _, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	tr, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return tr
}

func TestParseSingleFunction(t *testing.T) {
	tr := mustParse(t, "defun main() { out 2 + 3 * 4; return 0; }")
	root := tr.Get(tr.Root)
	if root.Tok.Type != token.FAKE {
		t.Fatalf("root = %s, want FAKE", root.Tok.Type)
	}
	fn := tr.Get(root.Left)
	if fn.Tok.Type != token.IDENT || fn.Tok.Literal != "main" {
		t.Fatalf("program node = %v, want the func_decl name token IDENT main", fn.Tok)
	}
}

func TestParseTwoFunctionsChainedInDeclarationOrder(t *testing.T) {
	tr := mustParse(t, "defun add(a,b) { return a + b; } defun main() { out add(7, 35); return 0; }")

	root := tr.Get(tr.Root)
	chain := tr.Get(root.Left)
	if chain.Tok.Type != token.LBRACE {
		t.Fatalf("expected chain node linking two func_decls, got %s", chain.Tok.Type)
	}
	addNode := tr.Get(chain.Left)
	mainNode := tr.Get(chain.Right)
	if addNode.Tok.Literal != "add" || mainNode.Tok.Literal != "main" {
		t.Fatalf("expected add then main, got %q then %q", addNode.Tok.Literal, mainNode.Tok.Literal)
	}
}

func TestParseBareTopLevelStatementRejected(t *testing.T) {
	toks, _, err := lexer.Lex("out 1;")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	if _, err := parser.Parse(toks); err == nil {
		t.Fatal("expected a syntax error for a bare top-level statement")
	}
}

func TestParseUndeclaredIdentifierIsSyntaxError(t *testing.T) {
	toks, _, err := lexer.Lex("defun main() { out y; return 0; }")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, err = parser.Parse(toks)
	if err == nil {
		t.Fatal("expected a syntax error for the undeclared identifier y")
	}
	synErr, ok := err.(*parser.SyntaxError)
	if !ok {
		t.Fatalf("expected *parser.SyntaxError, got %T", err)
	}
	if synErr.Got.Literal != "y" {
		t.Fatalf("error token = %q, want y", synErr.Got.Literal)
	}
}

func TestParentCorrectnessAcrossTree(t *testing.T) {
	tr := mustParse(t, "defun main() { x = 5; if x > 3 { out 1; } else { out 0; } return 0; }")
	for i, n := range tr.Nodes {
		if i == tr.Root {
			continue
		}
		if n.Parent == ast.None {
			continue // unattached scratch nodes, if any, are not reachable from root
		}
		parent := tr.Get(n.Parent)
		if parent.Left != i && parent.Right != i {
			t.Errorf("node %d's parent %d does not point back to it", i, n.Parent)
		}
	}
}

func TestScopeResolutionTotalityOnResolvedIdentifiers(t *testing.T) {
	tr := mustParse(t, "defun f(a,b) { x = a + b; return x; }")
	for _, n := range tr.Nodes {
		if n.Tok.Type != token.IDENT {
			continue
		}
		if !n.Tok.Scope.Resolved() {
			t.Fatalf("identifier %q left unresolved", n.Tok.Literal)
		}
		ref := n.Tok.Scope
		if ref.ScopeID < 0 || ref.ScopeID >= len(tr.Scopes) {
			t.Fatalf("scope id %d out of range", ref.ScopeID)
		}
		if ref.InnerID < 0 || ref.InnerID >= len(tr.Scopes[ref.ScopeID].Symbols) {
			t.Fatalf("inner id %d out of range for scope %d", ref.InnerID, ref.ScopeID)
		}
	}
}

func TestParameterSlotsAreDistinct(t *testing.T) {
	tr := mustParse(t, "defun f(a,b,c) { return a; }")
	// scope 0 = global, scope 1 = f's own scope (symbol 0 = f itself).
	scope := tr.Scopes[1]
	seen := map[int]bool{}
	for i, sym := range scope.Symbols {
		if sym.Kind != ast.Parameter {
			continue
		}
		if seen[i] {
			t.Fatalf("duplicate slot %d", i)
		}
		seen[i] = true
	}
	if len(seen) != 3 {
		t.Fatalf("got %d parameter slots, want 3", len(seen))
	}
}

func TestAssignmentToParameterNameAddsDistinctVariable(t *testing.T) {
	tr := mustParse(t, "defun f(x) { x = x + 1; return x; }")
	scope := tr.Scopes[1]
	var paramCount, varCount int
	for _, sym := range scope.Symbols {
		if sym.Name != "x" {
			continue
		}
		switch sym.Kind {
		case ast.Parameter:
			paramCount++
		case ast.Variable:
			varCount++
		}
	}
	if paramCount != 1 || varCount != 1 {
		t.Fatalf("got %d parameter x and %d variable x, want 1 and 1", paramCount, varCount)
	}
}
