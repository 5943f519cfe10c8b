package parse

import (
	"github.com/dekarrin/sturgeon/lex"
	"github.com/dekarrin/sturgeon/ref"
)

// Builder is the minimal contract the owning Document must satisfy so the
// parse engine can allocate node/token records without knowing anything
// about arenas itself. Node identity across an incremental reparse is kept
// by the engine, not the Builder: on a Cache hit for a primary rule, the
// engine hands back the cached NodeRef instead of calling NewNode.
type Builder interface {
	// NewNode allocates a node record of the given kind with no children
	// yet, and returns its ref.
	NewNode(kind NodeKind) ref.NodeRef

	// TokenAt returns the TokenRef for the token at index i in the
	// engine's token stream (already materialized by the caller before
	// parsing begins).
	TokenAt(i int) ref.TokenRef

	// SetSpan records the [start, length) span of a node.
	SetSpan(n ref.NodeRef, start, length int)

	// SetParent records n's parent.
	SetParent(n ref.NodeRef, parent ref.NodeRef)

	// AppendChild appends child to n's ordered child list.
	AppendChild(n ref.NodeRef, child ref.PolyRef)

	// SetChildren replaces n's entire ordered child list, used when
	// splicing a cached subtree or lifting a child during hand-written
	// left-recursion handling.
	SetChildren(n ref.NodeRef, children []ref.PolyRef)

	// SetCapture records a named capture value on n.
	SetCapture(n ref.NodeRef, name string, value any)

	// NodeKind returns the kind of an already-built node, used to validate
	// a cache hit.
	NodeKind(n ref.NodeRef) NodeKind

	// NodeSpan returns a node's recorded [start, length) span.
	NodeSpan(n ref.NodeRef) (start, length int)
}

// TokenSource exposes the token stream being parsed, independent of the
// underlying lex.Token slice representation.
type TokenSource interface {
	Len() int
	At(i int) lex.Token
}

type sliceTokenSource []lex.Token

func (s sliceTokenSource) Len() int          { return len(s) }
func (s sliceTokenSource) At(i int) lex.Token { return s[i] }

// NewTokenSource wraps a plain token slice as a TokenSource.
func NewTokenSource(toks []lex.Token) TokenSource {
	return sliceTokenSource(toks)
}
