package doc

import (
	"github.com/dekarrin/sturgeon/buffer"
	"github.com/dekarrin/sturgeon/lex"
	"github.com/dekarrin/sturgeon/ref"
)

// Visitor is called on each node/token entered and left during a
// depth-first traversal. enter returns false to prune descent into that
// node's children; leave always runs for a node whose enter returned true,
// after all of its children have been visited (post-order completion).
type Visitor struct {
	EnterNode  func(n ref.NodeRef) bool
	LeaveNode  func(n ref.NodeRef)
	VisitToken func(t ref.TokenRef)
}

// TraverseTree walks the whole syntax tree from the root.
func (d *Document) TraverseTree(v Visitor) {
	d.mu.RLock()
	root := d.root
	d.mu.RUnlock()
	d.TraverseSubtreeV(root, v)
}

// TraverseSubtree walks the subtree rooted at n using a simplified
// enter/leave pair (no per-token callback); used internally by
// TokenParent and other structural queries that don't need token visits.
func (d *Document) TraverseSubtree(n ref.NodeRef, enter func(ref.NodeRef) bool, leave func(ref.NodeRef)) {
	d.TraverseSubtreeV(n, Visitor{EnterNode: enter, LeaveNode: leave})
}

// TraverseSubtreeV walks the subtree rooted at n using the full Visitor.
func (d *Document) TraverseSubtreeV(n ref.NodeRef, v Visitor) {
	if n.IsNil() {
		return
	}
	nd, ok := d.nodes.Get(n.Entry)
	if !ok {
		return
	}
	descend := true
	if v.EnterNode != nil {
		descend = v.EnterNode(n)
	}
	if descend {
		for _, child := range nd.children {
			if cn := child.AsNodeRef(); !cn.IsNil() {
				d.TraverseSubtreeV(cn, v)
			} else if ct := child.AsTokenRef(); !ct.IsNil() && v.VisitToken != nil {
				v.VisitToken(ct)
			}
		}
	}
	if v.LeaveNode != nil {
		v.LeaveNode(n)
	}
}

// Cursor iterates tokens touching span in document order. "Touching" means
// overlap, containment, or boundary contact.
type Cursor struct {
	toks []ref.TokenRef
	idx  int
}

// Next returns the next touching token and true, or the zero TokenRef and
// false when exhausted.
func (c *Cursor) Next() (ref.TokenRef, bool) {
	if c.idx >= len(c.toks) {
		return ref.TokenRef{}, false
	}
	t := c.toks[c.idx]
	c.idx++
	return t, true
}

// Cursor returns a token iterator over every token touching span.
func (d *Document) Cursor(span buffer.Span) *Cursor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []ref.TokenRef
	for _, tr := range d.order {
		tok, ok := d.tokens.Get(tr.Entry)
		if !ok {
			continue
		}
		lt := lex.Token{Kind: tok.Kind, Start: tok.Start, Length: tok.Length}
		if lt.Touches(span.Start) || lt.Touches(span.End) || (lt.Start >= span.Start && lt.Start < span.End) {
			out = append(out, tr)
		}
	}
	return &Cursor{toks: out}
}
