// Package parser implements the recursive-descent parser with
// integrated scope resolution described in §4.2: token stream in, a
// fully scope-resolved ast.Tree out.
//
// There is no error recovery (§4.2, §9): the first SyntaxError aborts
// parsing and the partially built Tree is simply discarded by the
// caller. The source's "to_delete" cleanup list has no counterpart here
// — the arena is one slice owned by the Tree, dropped as a whole on
// error, so there is nothing to track node-by-node (§9).
package parser

import (
	"fmt"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/lexer"
	"github.com/minic-lang/minic/pkg/token"
)

// SyntaxError is the parser's sole error type (§7): an unexpected token,
// a missing delimiter, or a reference to an undeclared identifier.
type SyntaxError struct {
	Pos      token.Position
	Expected string
	Got      token.Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Pos, e.Expected, e.Got)
}

func unresolved(tok token.Token) *SyntaxError {
	return &SyntaxError{Pos: tok.Pos, Expected: "a declared variable, parameter or function", Got: tok}
}

// Parser walks a token stream, building an ast.Tree and resolving every
// identifier occurrence as it goes; scope resolution is never deferred
// to a later pass (§4.2).
type Parser struct {
	toks []token.Token
	pos  int
	tree *ast.Tree

	global  int            // scope 0, the global scope (§3); holds no symbols of its own
	current int            // current_scope_id: the scope body statements resolve against
	funcs   map[string]int // function name -> its own scope id, used to resolve call sites
}

// New creates a Parser over an already-lexed token stream. tokens MUST
// end with a token.TERMINATOR, as produced by lexer.Lex.
func New(toks []token.Token) *Parser {
	p := &Parser{toks: toks, tree: ast.NewTree(), funcs: map[string]int{}}
	p.global = p.tree.NewScope(ast.None)
	p.current = p.global
	return p
}

// Parse parses and scope-resolves a complete program, following the
// `general = program Terminator` production.
func Parse(toks []token.Token) (*ast.Tree, error) {
	return New(toks).ParseProgram()
}

// ParseProgram parses `program = func_decl { func_decl }` and installs
// it as the tree's root's left child, then requires the lexer's
// Terminator sentinel. A bare top-level statement — anything other than
// `defun` — is a syntax error: this language has no true global
// variables and no top-level executable statements (§9).
func (p *Parser) ParseProgram() (*ast.Tree, error) {
	if p.cur().Type != token.DEFUN {
		return nil, &SyntaxError{Pos: p.cur().Pos, Expected: "a function declaration (bare top-level statements are not allowed)", Got: p.cur()}
	}

	acc, err := p.parseFuncDecl()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.DEFUN {
		next, err := p.parseFuncDecl()
		if err != nil {
			return nil, err
		}
		chainTok := token.New(token.LBRACE, "", p.toks[p.pos-1].Pos)
		chain := p.tree.Add(chainTok, ast.None, ast.None, ast.None)
		p.tree.SetLeft(chain, acc)
		p.tree.SetRight(chain, next)
		acc = chain
	}

	if _, err := p.expect(token.TERMINATOR); err != nil {
		return nil, err
	}

	p.tree.SetLeft(p.tree.Root, acc)
	return p.tree, nil
}

func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(typ token.Type) (token.Token, error) {
	if p.cur().Type != typ {
		return token.Token{}, &SyntaxError{Pos: p.cur().Pos, Expected: typ.String(), Got: p.cur()}
	}
	return p.advance(), nil
}

// parseFuncDecl parses `defun ident ( [param_list] ) block`, creating a
// new scope for the function and registering it (by name) before its
// body is parsed, so that self-recursive calls resolve the same way a
// call to any other previously declared function does.
func (p *Parser) parseFuncDecl() (int, error) {
	if _, err := p.expect(token.DEFUN); err != nil {
		return ast.None, err
	}
	if p.cur().Type != token.IDENT {
		return ast.None, &SyntaxError{Pos: p.cur().Pos, Expected: "an identifier naming the function", Got: p.cur()}
	}
	nameTok := p.advance()

	scopeID := p.tree.NewScope(ast.None)
	innerID := p.tree.Declare(scopeID, nameTok.Literal, ast.Function, lexer.Hash(nameTok.Literal))
	nameTok.Scope = token.ScopeRef{ScopeID: scopeID, InnerID: innerID}
	p.funcs[nameTok.Literal] = scopeID

	prevScope := p.current
	p.current = scopeID
	defer func() { p.current = prevScope }()

	if _, err := p.expect(token.LPAREN); err != nil {
		return ast.None, err
	}
	params := ast.None
	if p.cur().Type != token.RPAREN {
		var err error
		params, err = p.parseParamList()
		if err != nil {
			return ast.None, err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return ast.None, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return ast.None, err
	}

	node := p.tree.Add(nameTok, ast.None, ast.None, ast.None)
	p.tree.SetLeft(node, params)
	p.tree.SetRight(node, body)
	return node, nil
}

// parseParamList parses `ident { ',' ident }` as a left-leaning chain of
// comma nodes, declaring each parameter into the current (function)
// scope in declaration order — that order IS the stack-frame slot
// index (§3, §4.3).
func (p *Parser) parseParamList() (int, error) {
	first, err := p.declareLocal(ast.Parameter)
	if err != nil {
		return ast.None, err
	}
	acc := first
	for p.cur().Type == token.COMMA {
		commaTok := p.advance()
		next, err := p.declareLocal(ast.Parameter)
		if err != nil {
			return ast.None, err
		}
		node := p.tree.Add(commaTok, ast.None, ast.None, ast.None)
		p.tree.SetLeft(node, acc)
		p.tree.SetRight(node, next)
		acc = node
	}
	return acc, nil
}

// declareLocal consumes an identifier token and declares it as a new
// symbol of the given kind in the current scope, returning the leaf
// node for it.
func (p *Parser) declareLocal(kind ast.SymbolKind) (int, error) {
	tok, err := p.expect(token.IDENT)
	if err != nil {
		return ast.None, err
	}
	innerID := p.tree.Declare(p.current, tok.Literal, kind, lexer.Hash(tok.Literal))
	tok.Scope = token.ScopeRef{ScopeID: p.current, InnerID: innerID}
	return p.tree.Add(tok, ast.None, ast.None, ast.None), nil
}

// parseBlock parses `'{' { statement } '}'` into a right-leaning spine
// of ';' nodes (§4.2), one per statement, terminated by ast.None.
func (p *Parser) parseBlock() (int, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return ast.None, err
	}
	var stmts []int
	for p.cur().Type != token.RBRACE {
		stmt, err := p.parseStatement()
		if err != nil {
			return ast.None, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return ast.None, err
	}

	chain := ast.None
	for i := len(stmts) - 1; i >= 0; i-- {
		semiTok := token.New(token.SEMI, "", p.tree.Get(stmts[i]).Tok.Pos)
		node := p.tree.Add(semiTok, ast.None, ast.None, ast.None)
		p.tree.SetLeft(node, stmts[i])
		p.tree.SetRight(node, chain)
		chain = node
	}
	return chain, nil
}

// parseStatement parses one `while | if | (assignment | expr | return |
// in | out) ';'` alternative. Control-flow statements are not followed
// by a ';' token themselves but are still handed to parseBlock to be
// wrapped uniformly in a ';' chain node (§4.2).
func (p *Parser) parseStatement() (int, error) {
	switch p.cur().Type {
	case token.WHILE:
		return p.parseWhile()
	case token.IF:
		return p.parseIf()
	default:
		node, err := p.parseSimpleStatement()
		if err != nil {
			return ast.None, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return ast.None, err
		}
		return node, nil
	}
}

func (p *Parser) parseWhile() (int, error) {
	whileTok := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return ast.None, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return ast.None, err
	}
	node := p.tree.Add(whileTok, ast.None, ast.None, ast.None)
	p.tree.SetLeft(node, cond)
	p.tree.SetRight(node, body)
	return node, nil
}

// parseIf parses `if expr block [ else block ]`. A binary tree node has
// only two children, so a three-way if/then/else is encoded as:
// left = cond, right = then-block when there is no else, or right = an
// ELSE node pairing (then-block, else-block) when there is. Code
// generation dispatches on whether the right child's token type is ELSE.
func (p *Parser) parseIf() (int, error) {
	ifTok := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return ast.None, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return ast.None, err
	}

	node := p.tree.Add(ifTok, ast.None, ast.None, ast.None)
	p.tree.SetLeft(node, cond)

	if p.cur().Type == token.ELSE {
		elseTok := p.advance()
		elseBlock, err := p.parseBlock()
		if err != nil {
			return ast.None, err
		}
		pair := p.tree.Add(elseTok, ast.None, ast.None, ast.None)
		p.tree.SetLeft(pair, thenBlock)
		p.tree.SetRight(pair, elseBlock)
		p.tree.SetRight(node, pair)
	} else {
		p.tree.SetRight(node, thenBlock)
	}
	return node, nil
}

// parseSimpleStatement parses `assignment | expr | return | in | out`
// without consuming the trailing ';' — the caller does that uniformly.
func (p *Parser) parseSimpleStatement() (int, error) {
	switch p.cur().Type {
	case token.RETURN:
		retTok := p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return ast.None, err
		}
		node := p.tree.Add(retTok, ast.None, ast.None, ast.None)
		p.tree.SetLeft(node, expr)
		return node, nil

	case token.IN:
		inTok := p.advance()
		target, err := p.resolveAssignTarget()
		if err != nil {
			return ast.None, err
		}
		node := p.tree.Add(inTok, ast.None, ast.None, ast.None)
		p.tree.SetLeft(node, target)
		return node, nil

	case token.OUT:
		outTok := p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return ast.None, err
		}
		node := p.tree.Add(outTok, ast.None, ast.None, ast.None)
		p.tree.SetLeft(node, expr)
		return node, nil

	case token.IDENT:
		// Disambiguate `assignment = ident '=' expr` from a bare
		// expression statement with one token of lookahead.
		if p.toks[p.pos+1].Type == token.ASSIGN {
			target, err := p.resolveAssignTarget()
			if err != nil {
				return ast.None, err
			}
			assignTok := p.advance() // '='
			rhs, err := p.parseExpr()
			if err != nil {
				return ast.None, err
			}
			node := p.tree.Add(assignTok, ast.None, ast.None, ast.None)
			p.tree.SetLeft(node, target)
			p.tree.SetRight(node, rhs)
			return node, nil
		}
		return p.parseExpr()

	default:
		return p.parseExpr()
	}
}

// resolveAssignTarget consumes an identifier used as an l-value (an
// assignment target or an `in` target), adding a fresh Variable symbol
// the first time this name is assigned in the current scope (§4.2 step
// 5). A Parameter or Function of the same name does not suppress the
// new Variable — per §3, symbols of different kinds with the same name
// are distinct entries.
func (p *Parser) resolveAssignTarget() (int, error) {
	tok, err := p.expect(token.IDENT)
	if err != nil {
		return ast.None, err
	}
	if ref, ok := p.tree.FindVariable(p.current, tok.Literal); ok {
		tok.Scope = ref
	} else {
		innerID := p.tree.Declare(p.current, tok.Literal, ast.Variable, lexer.Hash(tok.Literal))
		tok.Scope = token.ScopeRef{ScopeID: p.current, InnerID: innerID}
	}
	return p.tree.Add(tok, ast.None, ast.None, ast.None), nil
}

// resolveIdentUse consumes an identifier used as a value in an
// expression. It must already have a binding — this language does not
// scan outer scopes (§9) and a value use never implicitly declares one;
// an unresolved name is a SyntaxError (§4.2).
func (p *Parser) resolveIdentUse() (int, error) {
	tok, err := p.expect(token.IDENT)
	if err != nil {
		return ast.None, err
	}
	ref, ok := p.tree.Resolve(p.current, tok.Literal)
	if !ok {
		return ast.None, unresolved(tok)
	}
	tok.Scope = ref
	return p.tree.Add(tok, ast.None, ast.None, ast.None), nil
}

// --- Expression grammar: or -> and -> eq -> cmp -> sum -> mul -> pow -> primary ---
// Every level is left-associative: parse one operand, then loop folding
// `op right` pairs into new_node(op, accumulator, right) (§4.2).

func (p *Parser) parseExpr() (int, error) { return p.parseOr() }

func (p *Parser) parseOr() (int, error) {
	return p.parseLeftAssoc(p.parseAnd, token.OR)
}

func (p *Parser) parseAnd() (int, error) {
	return p.parseLeftAssoc(p.parseEq, token.AND)
}

func (p *Parser) parseEq() (int, error) {
	return p.parseLeftAssoc(p.parseCmp, token.EQ, token.NEQ)
}

func (p *Parser) parseCmp() (int, error) {
	return p.parseLeftAssoc(p.parseSum, token.LT, token.LEQ, token.GT, token.GEQ)
}

func (p *Parser) parseSum() (int, error) {
	return p.parseLeftAssoc(p.parseMul, token.ADD, token.SUB)
}

func (p *Parser) parseMul() (int, error) {
	return p.parseLeftAssoc(p.parsePow, token.MUL, token.DIV)
}

func (p *Parser) parsePow() (int, error) {
	return p.parseLeftAssoc(p.parsePrimary, token.POW)
}

func (p *Parser) parseLeftAssoc(next func() (int, error), ops ...token.Type) (int, error) {
	acc, err := next()
	if err != nil {
		return ast.None, err
	}
	for matchesAny(p.cur().Type, ops) {
		opTok := p.advance()
		rhs, err := next()
		if err != nil {
			return ast.None, err
		}
		node := p.tree.Add(opTok, ast.None, ast.None, ast.None)
		p.tree.SetLeft(node, acc)
		p.tree.SetRight(node, rhs)
		acc = node
	}
	return acc, nil
}

func matchesAny(typ token.Type, ops []token.Type) bool {
	for _, op := range ops {
		if typ == op {
			return true
		}
	}
	return false
}

// parsePrimary parses `'(' expr ')' | call | num | ident`.
func (p *Parser) parsePrimary() (int, error) {
	switch p.cur().Type {
	case token.LPAREN:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return ast.None, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return ast.None, err
		}
		return inner, nil

	case token.NUM:
		tok := p.advance()
		return p.tree.Add(tok, ast.None, ast.None, ast.None), nil

	case token.IDENT:
		if p.toks[p.pos+1].Type == token.LPAREN {
			return p.parseCall()
		}
		return p.resolveIdentUse()

	default:
		return ast.None, &SyntaxError{Pos: p.cur().Pos, Expected: "an expression", Got: p.cur()}
	}
}

// parseCall parses `ident '(' [ arg_list ] ')'`. The callee name is
// resolved against the flat function registry, not the generic scope
// chain, so a call can name any function declared earlier in the
// program or the enclosing function itself, unlike plain variable
// lookup (§9: no lexical nesting beyond function-local applies to
// values, not to call targets). A function declared later in the
// program is not yet registered, so a call to it is unresolved.
func (p *Parser) parseCall() (int, error) {
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return ast.None, err
	}
	scopeID, ok := p.funcs[nameTok.Literal]
	if !ok {
		return ast.None, unresolved(nameTok)
	}
	nameTok.Scope = token.ScopeRef{ScopeID: scopeID, InnerID: 0}
	callee := p.tree.Add(nameTok, ast.None, ast.None, ast.None)

	if _, err := p.expect(token.LPAREN); err != nil {
		return ast.None, err
	}
	args := ast.None
	if p.cur().Type != token.RPAREN {
		args, err = p.parseArgList()
		if err != nil {
			return ast.None, err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return ast.None, err
	}

	callTok := token.New(token.CALL, nameTok.Literal, nameTok.Pos)
	node := p.tree.Add(callTok, ast.None, ast.None, ast.None)
	p.tree.SetLeft(node, callee)
	p.tree.SetRight(node, args)
	return node, nil
}

// parseArgList parses `expr { ',' expr }` as a left-leaning chain of
// comma nodes, mirroring parseParamList's shape (§4.2).
func (p *Parser) parseArgList() (int, error) {
	first, err := p.parseExpr()
	if err != nil {
		return ast.None, err
	}
	acc := first
	for p.cur().Type == token.COMMA {
		commaTok := p.advance()
		next, err := p.parseExpr()
		if err != nil {
			return ast.None, err
		}
		node := p.tree.Add(commaTok, ast.None, ast.None, ast.None)
		p.tree.SetLeft(node, acc)
		p.tree.SetRight(node, next)
		acc = node
	}
	return acc, nil
}
