package doc

import (
	"github.com/dekarrin/sturgeon/internal/encoding"
	"github.com/dekarrin/sturgeon/parse"
	"github.com/dekarrin/sturgeon/ref"
)

// DebugNode is one node of a DebugDump snapshot: just the shape of the
// tree, not its captures or semantics, enough to diff two dumps of the
// same document across an edit.
type DebugNode struct {
	Kind     parse.NodeKind
	Start    int
	Length   int
	Children []DebugNode
}

// DebugDump snapshots the document's current tree shape in REZI's compact
// binary form, for diagnostics logging and golden-file comparisons in
// tests.
func (d *Document) DebugDump() []byte {
	return encoding.Encode(d.debugNode(d.RootNodeRef()))
}

func (d *Document) debugNode(n ref.NodeRef) DebugNode {
	start, length, _ := d.SpanOfNode(n)
	out := DebugNode{Kind: d.NodeKind(n), Start: start, Length: length}
	for _, c := range d.NodeChildren(n) {
		if cn := c.AsNodeRef(); !cn.IsNil() {
			out.Children = append(out.Children, d.debugNode(cn))
		}
	}
	return out
}
