package interchange

import (
	"fmt"
	"io"

	"github.com/tidwall/sjson"

	"github.com/minic-lang/minic/internal/ast"
)

// WriteJSON renders the same tree Write encodes as a single JSON document,
// one object per arena slot, for callers that want to feed the resolved
// AST to JSON-based tooling instead of minic-back (§6's --format json
// front-end option). minic-back only ever reads the parenthesized prefix
// form Write/Read use; this path is emit-only.
func WriteJSON(tree *ast.Tree, w io.Writer) error {
	doc := []byte(`{"root":0,"nodes":[]}`)
	var err error
	doc, err = sjson.SetBytes(doc, "root", tree.Root)
	if err != nil {
		return err
	}

	for i, n := range tree.Nodes {
		prefix := fmt.Sprintf("nodes.%d", i)
		doc, err = sjson.SetBytes(doc, prefix+".token", tokenText(tree, n.Tok))
		if err != nil {
			return err
		}
		doc, err = sjson.SetBytes(doc, prefix+".left", n.Left)
		if err != nil {
			return err
		}
		doc, err = sjson.SetBytes(doc, prefix+".right", n.Right)
		if err != nil {
			return err
		}
		doc, err = sjson.SetBytes(doc, prefix+".parent", n.Parent)
		if err != nil {
			return err
		}
		doc, err = sjson.SetBytes(doc, prefix+".line", n.Tok.Pos.Line)
		if err != nil {
			return err
		}
		doc, err = sjson.SetBytes(doc, prefix+".column", n.Tok.Pos.Column)
		if err != nil {
			return err
		}
	}

	_, err = w.Write(doc)
	return err
}
