// Package ast defines the arena-backed syntax tree and scope tables
// built by the parser (§3, §4.2, §9).
//
// Nodes live in a single flat slice and reference each other by integer
// index rather than by pointer. The spec's design notes (§9) call out
// that a pointer tree with parent back-references is an aliasing hazard
// once nodes are rewritten or reparented during parsing; an arena with
// stable indices sidesteps that entirely — reparenting a node is just
// overwriting an int.
package ast

import (
	"github.com/minic-lang/minic/pkg/token"
)

// None is the sentinel used for absent Left/Right/Parent links.
const None = -1

// Node is one arena slot: a token plus up to two children and a parent
// back-reference, all expressed as indices into the owning Tree.Nodes.
type Node struct {
	Tok    token.Token
	Left   int
	Right  int
	Parent int
}

// Tree is the whole program: a node arena rooted at a synthetic Fake
// node (§3), plus the scope table every resolved Identifier points into.
type Tree struct {
	Nodes  []Node
	Scopes []Scope
	Root   int
}

// NewTree creates an empty tree with the synthetic Fake root already
// allocated at index 0.
func NewTree() *Tree {
	t := &Tree{}
	root := t.Add(token.New(token.FAKE, "", token.Position{Line: 0, Column: 0}), None, None, None)
	t.Root = root
	return t
}

// Add allocates a new node and returns its index. left/right/parent
// should be None or a prior index; Add does not itself fix up the
// parent's child pointer — callers wire structure explicitly with
// SetLeft/SetRight so the direction of attachment is always visible at
// the call site.
func (t *Tree) Add(tok token.Token, left, right, parent int) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Tok: tok, Left: left, Right: right, Parent: parent})
	return idx
}

// SetLeft attaches child as node's left subtree and fixes child's parent
// back-reference. A None child only updates node's pointer.
func (t *Tree) SetLeft(node, child int) {
	t.Nodes[node].Left = child
	if child != None {
		t.Nodes[child].Parent = node
	}
}

// SetRight attaches child as node's right subtree and fixes child's
// parent back-reference.
func (t *Tree) SetRight(node, child int) {
	t.Nodes[node].Right = child
	if child != None {
		t.Nodes[child].Parent = node
	}
}

// Get returns the node at idx.
func (t *Tree) Get(idx int) Node {
	return t.Nodes[idx]
}

// SymbolKind classifies a declared name (§3).
type SymbolKind int

const (
	Variable SymbolKind = iota
	Parameter
	Function
)

func (k SymbolKind) String() string {
	switch k {
	case Variable:
		return "VAR"
	case Parameter:
		return "PAR"
	case Function:
		return "FUNC"
	default:
		return "UNKNOWN"
	}
}

// Symbol is a single declared name within a Scope.
type Symbol struct {
	Name string
	Kind SymbolKind
	Hash uint32
}

// Scope is an ordered list of symbols declared directly within it, plus
// a link to its enclosing scope (None for the global scope).
type Scope struct {
	Parent  int
	Symbols []Symbol
}

// NewScope appends a new scope with the given parent and returns its
// index into Tree.Scopes.
func (t *Tree) NewScope(parent int) int {
	id := len(t.Scopes)
	t.Scopes = append(t.Scopes, Scope{Parent: parent})
	return id
}

// Declare appends a symbol to scope id and returns its inner index
// (the InnerID half of a token.ScopeRef).
func (t *Tree) Declare(scopeID int, name string, kind SymbolKind, hash uint32) int {
	s := &t.Scopes[scopeID]
	innerID := len(s.Symbols)
	s.Symbols = append(s.Symbols, Symbol{Name: name, Kind: kind, Hash: hash})
	return innerID
}

// Resolve looks up name starting in scopeID and walking up through
// Parent links, most-recently-declared symbol first within each scope
// (so shadowing within the same scope resolves to the latest
// declaration). It returns the winning ScopeRef and true, or
// token.Unresolved and false if no enclosing scope declares name.
func (t *Tree) Resolve(scopeID int, name string) (token.ScopeRef, bool) {
	for id := scopeID; id != None; {
		scope := t.Scopes[id]
		for i := len(scope.Symbols) - 1; i >= 0; i-- {
			if scope.Symbols[i].Name == name {
				return token.ScopeRef{ScopeID: id, InnerID: i}, true
			}
		}
		id = scope.Parent
	}
	return token.Unresolved, false
}

// FindVariable looks up name within scopeID restricted to Variable-kind
// symbols only (it does not consider Parameter or Function symbols of
// the same name, and does not walk to an enclosing scope). This backs
// the assignment-target rule of §4.2 step 5: "adds {name, Variable} if
// no variable of that name already exists" — a Parameter or Function
// sharing the name does not suppress a fresh Variable declaration.
func (t *Tree) FindVariable(scopeID int, name string) (token.ScopeRef, bool) {
	symbols := t.Scopes[scopeID].Symbols
	for i := len(symbols) - 1; i >= 0; i-- {
		if symbols[i].Kind == Variable && symbols[i].Name == name {
			return token.ScopeRef{ScopeID: scopeID, InnerID: i}, true
		}
	}
	return token.Unresolved, false
}

// Symbol dereferences a resolved ScopeRef back to the Symbol it names.
func (t *Tree) Symbol(ref token.ScopeRef) Symbol {
	return t.Scopes[ref.ScopeID].Symbols[ref.InnerID]
}
