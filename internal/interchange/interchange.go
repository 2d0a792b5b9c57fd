// Package interchange implements the tree interchange format (§6): the
// ASCII parenthesized prefix form used to hand a scope-resolved AST from
// the front-end binary to the back-end binary.
//
// A node is written `( TOKEN L R )` where L and R are each either the
// literal `nil` or another node. TOKEN is a fixed mnemonic for
// operators/keywords/separators, a signed decimal for a number literal,
// `name:kind` (kind one of FUNC, VAR, PAR) for an identifier, or the
// literal word `CALL` for a call site.
package interchange

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/pkg/token"
)

var fixedMnemonics = map[token.Type]string{
	token.FAKE:   "FAKE",
	token.ADD:    "ADD",
	token.SUB:    "SUB",
	token.MUL:    "MUL",
	token.DIV:    "DIV",
	token.POW:    "POW",
	token.OR:     "OR",
	token.AND:    "AND",
	token.EQ:     "EQ",
	token.NEQ:    "NEQ",
	token.GT:     "GT",
	token.LT:     "LT",
	token.GEQ:    "GEQ",
	token.LEQ:    "LEQ",
	token.ASSIGN: "ASSIGN",
	token.WHILE:  "WHILE",
	token.IF:     "IF",
	token.ELSE:   "ELSE",
	token.DEFUN:  "DEFUN",
	token.RETURN: "RETURN",
	token.IN:     "IN",
	token.OUT:    "OUT",
	token.LPAREN: "PAR_OPEN",
	token.RPAREN: "PAR_CLOSE",
	token.LBRACE: "BRACE_OPEN",
	token.RBRACE: "BRACE_CLOSE",
	token.COMMA:  "COMMA",
	token.SEMI:   "SEMI",
}

var reverseMnemonics = func() map[string]token.Type {
	m := make(map[string]token.Type, len(fixedMnemonics))
	for t, s := range fixedMnemonics {
		m[s] = t
	}
	return m
}()

func symbolKindMnemonic(k ast.SymbolKind) string {
	switch k {
	case ast.Function:
		return "FUNC"
	case ast.Variable:
		return "VAR"
	case ast.Parameter:
		return "PAR"
	default:
		return "VAR"
	}
}

func mnemonicSymbolKind(s string) (ast.SymbolKind, bool) {
	switch s {
	case "FUNC":
		return ast.Function, true
	case "VAR":
		return ast.Variable, true
	case "PAR":
		return ast.Parameter, true
	default:
		return 0, false
	}
}

// Write serializes tree to w in the parenthesized prefix form, starting
// at the synthetic Fake root.
func Write(tree *ast.Tree, w io.Writer) error {
	bw := bufio.NewWriter(w)
	writeNode(tree, tree.Root, bw)
	if err := bw.Flush(); err != nil {
		return err
	}
	return nil
}

func writeNode(tree *ast.Tree, idx int, w *bufio.Writer) {
	if idx == ast.None {
		w.WriteString("nil")
		return
	}
	n := tree.Get(idx)
	w.WriteString("( ")
	w.WriteString(tokenText(tree, n.Tok))
	w.WriteByte(' ')
	writeNode(tree, n.Left, w)
	w.WriteByte(' ')
	writeNode(tree, n.Right, w)
	w.WriteString(" )")
}

func tokenText(tree *ast.Tree, tok token.Token) string {
	switch tok.Type {
	case token.NUM:
		return strconv.FormatInt(tok.IntValue, 10)
	case token.CALL:
		return "CALL"
	case token.IDENT:
		sym := tree.Symbol(tok.Scope)
		return tok.Literal + ":" + symbolKindMnemonic(sym.Kind)
	default:
		if m, ok := fixedMnemonics[tok.Type]; ok {
			return m
		}
		return tok.Type.String()
	}
}

// reader reconstructs a Tree from its interchange form, rebuilding the
// scope table exactly as the parser would have: the first occurrence of
// a FUNC name introduces a new scope (that occurrence's node is always
// the func_decl itself, since a function is always declared before any
// call to it reaches the interchange form); the first occurrence of a
// VAR/PAR name within the current scope introduces its symbol (§6).
type reader struct {
	words []string
	pos   int
	tree  *ast.Tree

	current    int
	funcScopes map[string]int
	declared   map[declKey]int
}

type declKey struct {
	scope int
	name  string
	kind  ast.SymbolKind
}

// Read parses the parenthesized prefix form from r into a fresh Tree.
func Read(r io.Reader) (*ast.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "(", " ( ")
	text = strings.ReplaceAll(text, ")", " ) ")
	words := strings.Fields(text)

	tree := ast.NewTree()
	// NewTree's synthetic root is a placeholder; Read rebuilds the real
	// root node from the interchange text rather than reusing it.
	tree.Nodes = tree.Nodes[:0]
	global := tree.NewScope(ast.None)

	rd := &reader{
		words:      words,
		tree:       tree,
		current:    global,
		funcScopes: map[string]int{},
		declared:   map[declKey]int{},
	}
	root, err := rd.parseNode()
	if err != nil {
		return nil, err
	}
	tree.Root = root
	return tree, nil
}

func (r *reader) peek() string {
	if r.pos >= len(r.words) {
		return ""
	}
	return r.words[r.pos]
}

func (r *reader) next() string {
	w := r.peek()
	r.pos++
	return w
}

func (r *reader) expect(word string) error {
	if r.peek() != word {
		return fmt.Errorf("interchange: expected %q, got %q at word %d", word, r.peek(), r.pos)
	}
	r.pos++
	return nil
}

func (r *reader) parseChild() (int, error) {
	if r.peek() == "nil" {
		r.next()
		return ast.None, nil
	}
	return r.parseNode()
}

func (r *reader) parseNode() (int, error) {
	if err := r.expect("("); err != nil {
		return ast.None, err
	}
	word := r.next()
	if word == "" {
		return ast.None, fmt.Errorf("interchange: unexpected end of input reading a token")
	}

	prevScope := r.current
	tok, pushedScope, err := r.resolveToken(word)
	if err != nil {
		return ast.None, err
	}

	left, err := r.parseChild()
	if err != nil {
		return ast.None, err
	}
	right, err := r.parseChild()
	if err != nil {
		return ast.None, err
	}

	if pushedScope {
		r.current = prevScope
	}

	if err := r.expect(")"); err != nil {
		return ast.None, err
	}

	idx := r.tree.Add(tok, ast.None, ast.None, ast.None)
	r.tree.SetLeft(idx, left)
	r.tree.SetRight(idx, right)
	return idx, nil
}

// resolveToken turns one TOKEN word into a token.Token, rebuilding scope
// table entries as needed. pushedScope reports whether this call opened
// a new current scope that the caller must restore after parsing this
// node's children.
func (r *reader) resolveToken(word string) (token.Token, bool, error) {
	if name, kind, ok := splitIdent(word); ok {
		return r.resolveIdent(name, kind)
	}
	if n, err := strconv.ParseInt(word, 10, 64); err == nil {
		tok := token.New(token.NUM, word, token.Position{})
		tok.IntValue = n
		return tok, false, nil
	}
	if word == "CALL" {
		return token.New(token.CALL, "CALL", token.Position{}), false, nil
	}
	if typ, ok := reverseMnemonics[word]; ok {
		return token.New(typ, "", token.Position{}), false, nil
	}
	return token.Token{}, false, fmt.Errorf("interchange: unrecognized token %q", word)
}

func splitIdent(word string) (name, kind string, ok bool) {
	i := strings.LastIndexByte(word, ':')
	if i < 0 {
		return "", "", false
	}
	kind = word[i+1:]
	if _, valid := mnemonicSymbolKind(kind); !valid {
		return "", "", false
	}
	return word[:i], kind, true
}

func (r *reader) resolveIdent(name, kindStr string) (token.Token, bool, error) {
	kind, _ := mnemonicSymbolKind(kindStr)
	tok := token.New(token.IDENT, name, token.Position{})

	if kind == ast.Function {
		scopeID, seen := r.funcScopes[name]
		if !seen {
			scopeID = r.tree.NewScope(ast.None)
			inner := r.tree.Declare(scopeID, name, ast.Function, 0)
			r.funcScopes[name] = scopeID
			tok.Scope = token.ScopeRef{ScopeID: scopeID, InnerID: inner}
			r.current = scopeID
			return tok, true, nil
		}
		tok.Scope = token.ScopeRef{ScopeID: scopeID, InnerID: 0}
		return tok, false, nil
	}

	key := declKey{scope: r.current, name: name, kind: kind}
	if innerID, ok := r.declared[key]; ok {
		tok.Scope = token.ScopeRef{ScopeID: r.current, InnerID: innerID}
		return tok, false, nil
	}
	innerID := r.tree.Declare(r.current, name, kind, 0)
	r.declared[key] = innerID
	tok.Scope = token.ScopeRef{ScopeID: r.current, InnerID: innerID}
	return tok, false, nil
}
