// Package ref defines the stable, non-panicking reference types used to
// address tokens and syntax nodes across edits: TokenRef, NodeRef, SiteRef,
// and the polymorphic PolyRef. None of these types hold a pointer into the
// owning document directly; all addressing goes through arena.Entry so that
// a reference surviving an edit either still resolves to the same logical
// object or is detectably stale (see arena.Arena).
package ref

import "github.com/dekarrin/sturgeon/arena"

// TokenRef addresses a token record owned by exactly one document.
type TokenRef struct {
	Doc   arena.Id
	Entry arena.Entry
}

// NilTokenRef is the intentionally-invalid TokenRef.
func NilTokenRef() TokenRef {
	return TokenRef{Entry: arena.NilEntry}
}

// IsNil returns whether r is the nil TokenRef. A nil ref is distinct from a
// stale one: nil was never meant to resolve to anything, stale once did.
func (r TokenRef) IsNil() bool {
	return r.Entry.IsNil()
}

// NodeRef addresses a syntax-node record owned by exactly one document.
type NodeRef struct {
	Doc   arena.Id
	Entry arena.Entry
}

// NilNodeRef is the intentionally-invalid NodeRef.
func NilNodeRef() NodeRef {
	return NodeRef{Entry: arena.NilEntry}
}

// IsNil returns whether r is the nil NodeRef.
func (r NodeRef) IsNil() bool {
	return r.Entry.IsNil()
}

// SiteRef is a character offset expressed indirectly, as "the site of this
// token's first character" (or end-of-input, if the backing ref is nil).
// Resolving a SiteRef requires a Resolver since the offset can shift as the
// document is edited.
type SiteRef struct {
	tok TokenRef
}

// NewSiteRef returns a SiteRef backed by tok.
func NewSiteRef(tok TokenRef) SiteRef {
	return SiteRef{tok: tok}
}

// Token returns the TokenRef backing s.
func (s SiteRef) Token() TokenRef {
	return s.tok
}

// Resolve returns the absolute character site of s using res, or (end of
// input, true) if s's token is nil, or (0, false) if the token is stale.
func (s SiteRef) Resolve(res Resolver) (int, bool) {
	if s.tok.IsNil() {
		return res.EndOfInput(), true
	}
	start, _, ok := res.TokenSpan(s.tok)
	if !ok {
		return 0, false
	}
	return start, true
}

// PolyKind distinguishes the variant held by a PolyRef.
type PolyKind int

const (
	PolyNil PolyKind = iota
	PolyNode
	PolyToken
)

// PolyRef is a tagged union of NodeRef and TokenRef, addressable without
// panicking: every accessor returns the zero/nil value of its result type on
// a missing edge or mismatched variant rather than failing.
type PolyRef struct {
	kind  PolyKind
	node  NodeRef
	token TokenRef
	res   Resolver
}

// NilPolyRef is the intentionally-invalid PolyRef.
func NilPolyRef() PolyRef {
	return PolyRef{kind: PolyNil}
}

// FromNode wraps a NodeRef as a PolyRef bound to res for traversal.
func FromNode(n NodeRef, res Resolver) PolyRef {
	if n.IsNil() {
		return NilPolyRef()
	}
	return PolyRef{kind: PolyNode, node: n, res: res}
}

// FromToken wraps a TokenRef as a PolyRef bound to res for traversal.
func FromToken(tok TokenRef, res Resolver) PolyRef {
	if tok.IsNil() {
		return NilPolyRef()
	}
	return PolyRef{kind: PolyToken, token: tok, res: res}
}

// IsNil returns whether p holds neither variant.
func (p PolyRef) IsNil() bool {
	return p.kind == PolyNil
}

// Kind returns which variant p holds.
func (p PolyRef) Kind() PolyKind {
	return p.kind
}

// AsNodeRef returns the NodeRef p holds, or the nil NodeRef if p is a token
// or nil. Never panics.
func (p PolyRef) AsNodeRef() NodeRef {
	if p.kind != PolyNode {
		return NilNodeRef()
	}
	return p.node
}

// AsTokenRef returns the TokenRef p holds, or the nil TokenRef if p is a
// node or nil. Never panics.
func (p PolyRef) AsTokenRef() TokenRef {
	if p.kind != PolyToken {
		return NilTokenRef()
	}
	return p.token
}

// Span returns the [start, end) character span of whichever object p
// addresses, or (0, 0, false) if p is nil or stale.
func (p PolyRef) Span() (start, end int, ok bool) {
	if p.kind == PolyNil || p.res == nil {
		return 0, 0, false
	}
	if p.kind == PolyNode {
		start, length, ok := p.res.SpanOfNode(p.node)
		return start, start + length, ok
	}
	start, length, ok := p.res.TokenSpan(p.token)
	return start, start + length, ok
}

// Parent returns the parent node of p as a PolyRef, or nil if p is a nil
// ref, a node with no parent (the root), or stale. Tokens report their
// owning node's parent-of-node semantics via the resolver's TokenParent.
func (p PolyRef) Parent() PolyRef {
	if p.kind == PolyNil || p.res == nil {
		return NilPolyRef()
	}
	var parent NodeRef
	switch p.kind {
	case PolyNode:
		parent = p.res.NodeParent(p.node)
	case PolyToken:
		parent = p.res.TokenParent(p.token)
	}
	return FromNode(parent, p.res)
}

// Children returns the ordered child refs of p, or nil if p is not a node or
// is stale.
func (p PolyRef) Children() []PolyRef {
	if p.kind != PolyNode || p.res == nil {
		return nil
	}
	return p.res.NodeChildren(p.node)
}

// GetChild looks up a captured field of the node p addresses by string name
// or integer index. Returns a nil PolyRef on any miss (wrong kind, unknown
// key, stale ref) rather than failing.
func (p PolyRef) GetChild(key any) PolyRef {
	if p.kind != PolyNode || p.res == nil {
		return NilPolyRef()
	}
	child, ok := p.res.NodeChild(p.node, key)
	if !ok {
		return NilPolyRef()
	}
	return child
}

// NextSibling returns the PolyRef immediately following p among its
// parent's children, or nil if p is the last child, has no parent, or is
// nil/stale.
func (p PolyRef) NextSibling() PolyRef {
	if p.kind == PolyNil || p.res == nil {
		return NilPolyRef()
	}
	return siblingAt(p, 1)
}

// PrevSibling returns the PolyRef immediately preceding p among its
// parent's children, or nil if p is the first child, has no parent, or is
// nil/stale.
func (p PolyRef) PrevSibling() PolyRef {
	if p.kind == PolyNil || p.res == nil {
		return NilPolyRef()
	}
	return siblingAt(p, -1)
}

func siblingAt(p PolyRef, delta int) PolyRef {
	parent := p.Parent()
	if parent.IsNil() {
		return NilPolyRef()
	}
	siblings := parent.Children()
	for i, sib := range siblings {
		if equalPoly(sib, p) {
			j := i + delta
			if j < 0 || j >= len(siblings) {
				return NilPolyRef()
			}
			return siblings[j]
		}
	}
	return NilPolyRef()
}

func equalPoly(a, b PolyRef) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case PolyNode:
		return a.node == b.node
	case PolyToken:
		return a.token == b.token
	default:
		return true
	}
}

// Resolver is the minimal contract a document-like owner must implement so
// that PolyRef/SiteRef traversal can be total and non-panicking. It is
// satisfied by doc.Document.
type Resolver interface {
	TokenSpan(TokenRef) (start, length int, ok bool)
	TokenParent(TokenRef) NodeRef
	SpanOfNode(NodeRef) (start, length int, ok bool)
	NodeParent(NodeRef) NodeRef
	NodeChildren(NodeRef) []PolyRef
	NodeChild(NodeRef, any) (PolyRef, bool)
	EndOfInput() int
}
