package doc

import (
	"github.com/dekarrin/sturgeon/parse"
	"github.com/dekarrin/sturgeon/ref"
)

// The methods below implement parse.Builder, letting parse.Engine allocate
// and populate node records without knowing anything about arenas; and
// ref.Resolver, letting ref.PolyRef traversal address this Document's
// tokens and nodes without panicking on a stale or missing edge.
//
// None of these methods take the Document's lock. The parse engine calls
// them from inside fullParse/applyEdit, which already hold the write lock;
// the methods are exported, and other callers (the traversal helpers, the
// analyzer) call them without taking any lock, so the locking discipline is
// a convention, not an enforced invariant.

func (d *Document) NewNode(kind parse.NodeKind) ref.NodeRef {
	e := d.nodes.Insert(&nodeRecord{kind: kind, captures: map[string]any{}})
	return ref.NodeRef{Doc: d.id, Entry: e}
}

func (d *Document) TokenAt(i int) ref.TokenRef {
	if i < 0 || i >= len(d.order) {
		return ref.NilTokenRef()
	}
	return d.order[i]
}

func (d *Document) SetSpan(n ref.NodeRef, start, length int) {
	if nd, ok := d.nodes.Get(n.Entry); ok {
		nd.start, nd.length = start, length
	}
}

func (d *Document) SetParent(n ref.NodeRef, parent ref.NodeRef) {
	if nd, ok := d.nodes.Get(n.Entry); ok {
		nd.parent = parent
	}
}

func (d *Document) AppendChild(n ref.NodeRef, child ref.PolyRef) {
	if nd, ok := d.nodes.Get(n.Entry); ok {
		child = d.rebind(child)
		nd.children = append(nd.children, child)
		if cn := child.AsNodeRef(); !cn.IsNil() {
			if cnd, ok := d.nodes.Get(cn.Entry); ok {
				cnd.parent = n
			}
		}
	}
}

func (d *Document) SetChildren(n ref.NodeRef, children []ref.PolyRef) {
	if nd, ok := d.nodes.Get(n.Entry); ok {
		rebound := make([]ref.PolyRef, len(children))
		for i, c := range children {
			rebound[i] = d.rebind(c)
		}
		nd.children = rebound
	}
}

func (d *Document) SetCapture(n ref.NodeRef, name string, value any) {
	if nd, ok := d.nodes.Get(n.Entry); ok {
		nd.captures[name] = value
	}
}

func (d *Document) NodeKind(n ref.NodeRef) parse.NodeKind {
	if nd, ok := d.nodes.Get(n.Entry); ok {
		return nd.kind
	}
	return -1
}

// IsScopeRoot reports whether n's kind is declared a scope root in the
// grammar this Document was parsed with (spec.md §3, §4.H, I6).
func (d *Document) IsScopeRoot(n ref.NodeRef) bool {
	return d.engine.IsScopeRoot(d.NodeKind(n))
}

func (d *Document) NodeSpan(n ref.NodeRef) (int, int) {
	if nd, ok := d.nodes.Get(n.Entry); ok {
		return nd.start, nd.length
	}
	return 0, 0
}

// rebind re-targets a PolyRef built without a resolver (the parse engine
// has no document to bind to) onto this Document, so downstream traversal
// via PolyRef.Parent/Children/etc. works without the caller needing to
// know which document produced it.
func (d *Document) rebind(p ref.PolyRef) ref.PolyRef {
	if n := p.AsNodeRef(); !n.IsNil() {
		return ref.FromNode(n, d)
	}
	if t := p.AsTokenRef(); !t.IsNil() {
		return ref.FromToken(t, d)
	}
	return ref.NilPolyRef()
}

// --- ref.Resolver ---

func (d *Document) TokenSpan(t ref.TokenRef) (int, int, bool) {
	tok, ok := d.tokens.Get(t.Entry)
	if !ok {
		return 0, 0, false
	}
	return tok.Start, tok.Length, true
}

func (d *Document) TokenParent(t ref.TokenRef) ref.NodeRef {
	// Tokens don't carry an explicit parent pointer; find it by scanning
	// from the root. Traversal-heavy callers should prefer walking down
	// from a known node instead of calling this repeatedly.
	var found ref.NodeRef
	d.TraverseSubtree(d.root, func(n ref.NodeRef) bool {
		if !found.IsNil() {
			return false
		}
		nd, ok := d.nodes.Get(n.Entry)
		if !ok {
			return true
		}
		for _, c := range nd.children {
			if tr := c.AsTokenRef(); tr == t {
				found = n
				return false
			}
		}
		return true
	}, func(ref.NodeRef) {})
	return found
}

// SpanOfNode implements ref.Resolver. It is named distinctly from NodeSpan
// (parse.Builder's method) since that one reports (start, length) without
// an ok flag and both would otherwise collide on this receiver.
func (d *Document) SpanOfNode(n ref.NodeRef) (int, int, bool) {
	nd, ok := d.nodes.Get(n.Entry)
	if !ok {
		return 0, 0, false
	}
	return nd.start, nd.length, true
}

func (d *Document) NodeParent(n ref.NodeRef) ref.NodeRef {
	nd, ok := d.nodes.Get(n.Entry)
	if !ok {
		return ref.NilNodeRef()
	}
	return nd.parent
}

func (d *Document) NodeChildren(n ref.NodeRef) []ref.PolyRef {
	nd, ok := d.nodes.Get(n.Entry)
	if !ok {
		return nil
	}
	out := make([]ref.PolyRef, len(nd.children))
	copy(out, nd.children)
	return out
}

func (d *Document) NodeChild(n ref.NodeRef, key any) (ref.PolyRef, bool) {
	nd, ok := d.nodes.Get(n.Entry)
	if !ok {
		return ref.NilPolyRef(), false
	}
	switch k := key.(type) {
	case string:
		v, ok := nd.captures[k]
		if !ok {
			return ref.NilPolyRef(), false
		}
		return captureAsPoly(v, d)
	case int:
		if k < 0 || k >= len(nd.children) {
			return ref.NilPolyRef(), false
		}
		return nd.children[k], true
	default:
		return ref.NilPolyRef(), false
	}
}

func captureAsPoly(v any, res ref.Resolver) (ref.PolyRef, bool) {
	switch val := v.(type) {
	case ref.NodeRef:
		return ref.FromNode(val, res), true
	case ref.TokenRef:
		return ref.FromToken(val, res), true
	default:
		return ref.NilPolyRef(), false
	}
}
