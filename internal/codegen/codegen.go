// Package codegen implements §4.3: a read-only recursive tree walker
// that emits line-oriented stack-machine assembly from a fully
// scope-resolved ast.Tree.
//
// The generator never re-resolves an identifier by name (§3): every
// Variable/Parameter node's stack slot and every callee's frame size
// come directly from the (scope_id, inner_id) the parser already wrote
// into the token. Function labels are spelled from the function name
// token itself (`:func_<name>`).
package codegen

import (
	"bufio"
	"fmt"
	"io"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/isa"
	"github.com/minic-lang/minic/pkg/token"
)

// Generator walks one ast.Tree and writes assembly to an io.Writer.
// Label ids are monotonic and never reused (§5); each construct kind
// (comparisons, while loops, if/else) keeps its own counter, since the
// full label string already carries a kind-specific prefix and two
// counters can never collide with each other.
type Generator struct {
	tree *ast.Tree
	isa  isa.Set
	w    *bufio.Writer

	cmpID   int
	whileID int
	ifID    int

	currentN int // N = scope_size-1 of the function presently being emitted
}

// Generate walks tree and writes the complete program — the fixed
// entry-point prologue followed by every top-level function
// definition — to w.
func Generate(tree *ast.Tree, set isa.Set, w io.Writer) error {
	g := &Generator{tree: tree, isa: set, w: bufio.NewWriter(w)}
	g.emitEntryPrologue()
	for _, fn := range g.programFunctions() {
		g.emitFunction(fn)
	}
	return g.w.Flush()
}

func (g *Generator) line(format string, args ...any) {
	fmt.Fprintf(g.w, format+"\n", args...)
}

func (g *Generator) emitEntryPrologue() {
	g.line("%s :func_main", g.isa.Call)
	g.line("%s %s", g.isa.PushR, g.isa.RegA0)
	g.line("%s", g.isa.Out)
	g.line("%s", g.isa.Hlt)
}

// programFunctions flattens the left-leaning LBRACE chain the parser
// uses to link sibling func_decls (§4.2) into declaration order.
func (g *Generator) programFunctions() []int {
	root := g.tree.Get(g.tree.Root)
	var flatten func(idx int) []int
	flatten = func(idx int) []int {
		n := g.tree.Get(idx)
		if n.Tok.Type == token.LBRACE {
			return append(flatten(n.Left), flatten(n.Right)...)
		}
		return []int{idx}
	}
	return flatten(root.Left)
}

func (g *Generator) emitFunction(idx int) {
	n := g.tree.Get(idx)
	scopeID := n.Tok.Scope.ScopeID
	N := len(g.tree.Scopes[scopeID].Symbols) - 1
	prevN := g.currentN
	g.currentN = N
	defer func() { g.currentN = prevN }()

	g.line(":func_%s", n.Tok.Literal)
	g.line("%s %d", g.isa.Push, N)
	g.line("%s %s", g.isa.PushR, g.isa.RegSP)
	g.line("%s", g.isa.Add)
	g.line("%s %s", g.isa.PopR, g.isa.RegSP)

	g.emitBlock(n.Right)
}

// emitBlock walks the right-leaning spine of ';' nodes a block compiles
// to (§4.2), emitting each wrapped statement in order.
func (g *Generator) emitBlock(chain int) {
	for chain != ast.None {
		n := g.tree.Get(chain)
		g.emitStatement(n.Left)
		chain = n.Right
	}
}

func (g *Generator) emitStatement(idx int) {
	n := g.tree.Get(idx)
	switch n.Tok.Type {
	case token.WHILE:
		g.emitWhile(idx)
	case token.IF:
		g.emitIf(idx)
	case token.RETURN:
		g.emitReturn(idx)
	case token.IN:
		g.emitIn(idx)
	case token.OUT:
		g.emitOut(idx)
	case token.ASSIGN:
		g.emitAssign(idx)
	default:
		// A bare expression statement (most commonly a standalone
		// call): emit it for effect. The ISA has no generic "discard
		// top of stack" opcode, so a call statement's PUSHR A0 is the
		// only trace left on the data stack, exactly as §4.3
		// documents for the call bullet.
		g.emitExpr(idx)
	}
}

func (g *Generator) emitWhile(idx int) {
	n := g.tree.Get(idx)
	id := g.whileID
	g.whileID++

	g.line(":beginwhile_%d", id)
	g.emitExpr(n.Left)
	g.line("%s 0", g.isa.Push)
	g.line("%s :endwhile_%d", g.isa.Je, id)
	g.emitBlock(n.Right)
	g.line("%s :beginwhile_%d", g.isa.Jmp, id)
	g.line(":endwhile_%d", id)
}

func (g *Generator) emitIf(idx int) {
	n := g.tree.Get(idx)
	id := g.ifID
	g.ifID++

	g.emitExpr(n.Left)
	g.line("%s 0", g.isa.Push)

	right := g.tree.Get(n.Right)
	if right.Tok.Type == token.ELSE {
		g.line("%s :else_%d", g.isa.Je, id)
		g.emitBlock(right.Left)
		g.line("%s :endif_%d", g.isa.Jmp, id)
		g.line(":else_%d", id)
		g.emitBlock(right.Right)
		g.line(":endif_%d", id)
		return
	}

	g.line("%s :endif_%d", g.isa.Je, id)
	g.emitBlock(n.Right)
	g.line(":endif_%d", id)
}

func (g *Generator) emitReturn(idx int) {
	n := g.tree.Get(idx)
	g.emitExpr(n.Left)
	g.line("%s %s", g.isa.PopR, g.isa.RegA0)
	g.line("%s %s", g.isa.PushR, g.isa.RegSP)
	g.line("%s %d", g.isa.Push, g.currentN)
	g.line("%s", g.isa.Sub)
	g.line("%s %s", g.isa.PopR, g.isa.RegSP)
	g.line("%s", g.isa.Ret)
}

func (g *Generator) emitAssign(idx int) {
	n := g.tree.Get(idx)
	g.emitExpr(n.Right)
	g.line("%s %s", g.isa.PopM, slotAddr(g.tree.Get(n.Left).Tok.Scope.InnerID))
}

func (g *Generator) emitIn(idx int) {
	n := g.tree.Get(idx)
	g.line("%s", g.isa.In)
	g.line("%s %s", g.isa.PopM, slotAddr(g.tree.Get(n.Left).Tok.Scope.InnerID))
}

func (g *Generator) emitOut(idx int) {
	n := g.tree.Get(idx)
	g.emitExpr(n.Left)
	g.line("%s", g.isa.Out)
}

func (g *Generator) emitExpr(idx int) {
	n := g.tree.Get(idx)
	switch {
	case n.Tok.Type == token.NUM:
		g.line("%s %d", g.isa.Push, n.Tok.IntValue)

	case n.Tok.Type == token.IDENT:
		sym := g.tree.Symbol(n.Tok.Scope)
		if sym.Kind == ast.Function {
			panic("codegen: function identifier used outside a call (§4.3 invariant violation)")
		}
		g.line("%s %s", g.isa.PushM, slotAddr(n.Tok.Scope.InnerID))

	case n.Tok.Type == token.CALL:
		g.emitCall(idx)

	case isa.IsComparison(n.Tok.Type):
		g.emitComparison(idx)

	default:
		g.emitExpr(n.Left)
		g.emitExpr(n.Right)
		g.line("%s", g.isa.Arith(n.Tok.Type))
	}
}

// emitComparison emits the 0/1-materializing conditional-jump idiom
// (§4.3) with a fresh label-id pair per occurrence.
func (g *Generator) emitComparison(idx int) {
	n := g.tree.Get(idx)
	id := g.cmpID
	g.cmpID++

	jmp := g.isa.Jump(n.Tok.Type)

	g.emitExpr(n.Left)
	g.emitExpr(n.Right)
	g.line("%s", g.isa.Sub)
	g.line("%s 0", g.isa.Push)
	g.line("%s :%s_true_%d", jmp, jmp, id)
	g.line("%s 0", g.isa.Push)
	g.line("%s :%s_false_%d", g.isa.Jmp, jmp, id)
	g.line(":%s_true_%d", jmp, id)
	g.line("%s 1", g.isa.Push)
	g.line(":%s_false_%d", jmp, id)
}

func (g *Generator) emitCall(idx int) {
	n := g.tree.Get(idx)
	callee := g.tree.Get(n.Left)
	funcScope := callee.Tok.Scope.ScopeID
	N := len(g.tree.Scopes[funcScope].Symbols) - 1

	args := flattenArgs(g.tree, n.Right)
	for i, arg := range args {
		g.emitExpr(arg)
		g.line("%s %s", g.isa.PopM, argSlotAddr(N, i))
	}

	g.line("%s :func_%s", g.isa.Call, callee.Tok.Literal)
	g.line("%s %s", g.isa.PushR, g.isa.RegA0)
}

// flattenArgs reads the left-leaning chain of ',' nodes an arg_list
// compiles to (§4.2) back into left-to-right evaluation order.
func flattenArgs(tree *ast.Tree, idx int) []int {
	if idx == ast.None {
		return nil
	}
	n := tree.Get(idx)
	if n.Tok.Type != token.COMMA {
		return []int{idx}
	}
	return append(flattenArgs(tree, n.Left), n.Right)
}

// slotAddr formats the stack-frame address of inner_id k: [SP-(k-1)]
// (§4.3), collapsing the k=1 case to the bare [SP] it's arithmetically
// equal to.
func slotAddr(k int) string {
	d := k - 1
	if d == 0 {
		return "[SP]"
	}
	return fmt.Sprintf("[SP-%d]", d)
}

// argSlotAddr formats the address a CALL site writes its i-th (0-based)
// argument into, [SP+(N-i)] (§4.3), in the callee's not-yet-active frame.
func argSlotAddr(N, i int) string {
	d := N - i
	if d == 0 {
		return "[SP]"
	}
	return fmt.Sprintf("[SP+%d]", d)
}
