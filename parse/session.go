package parse

import (
	"github.com/dekarrin/sturgeon/lex"
	"github.com/dekarrin/sturgeon/ref"
)

// Session is handed to a grammar's HandWrittenFunc in place of the
// generated RuleExpr interpreter. It exposes single-token lookahead,
// advance, cache-aware descent into other rules, manual enter/leave of the
// node under construction, and lift — the library's mechanism for
// left-recursive hand-written rules.
type Session struct {
	p    *parserState
	rule *RuleDef
	node ref.NodeRef
}

// Peek returns the kind of the next unconsumed token.
func (s *Session) Peek() lex.Kind { return s.p.peek() }

// Advance consumes and returns the next token, appending it as a child of
// the node currently under construction.
func (s *Session) Advance() ref.TokenRef {
	if s.p.idx >= s.p.toks.Len() {
		return ref.NilTokenRef()
	}
	tok := s.p.b.TokenAt(s.p.idx)
	s.p.b.AppendChild(s.node, ref.FromToken(tok, nil))
	s.p.idx++
	return tok
}

// Descend parses one invocation of ruleKind via the cache-aware engine
// driver. It must not be used to directly left-recurse into the rule
// currently being entered — use Lift instead to build left-recursive
// structures.
func (s *Session) Descend(ruleKind NodeKind) ref.NodeRef {
	child := s.p.descend(ruleKind)
	s.p.b.AppendChild(s.node, ref.FromNode(child, nil))
	return child
}

// Enter begins construction of a fresh node of kind, independent of the
// node passed to the enclosing HandWrittenFunc. Used when a hand-written
// rule builds more than one node (e.g. the left-recursive spine of an
// expression grammar).
func (s *Session) Enter(kind NodeKind) ref.NodeRef {
	return s.p.b.NewNode(kind)
}

// Leave finalizes result as the node this session reports back to its
// caller, replacing the node originally allocated for this rule invocation.
// Unlike Enter/Leave's generated-rule counterpart there is no recursion
// restriction: a hand-written rule may call Enter/Leave any number of times.
func (s *Session) Leave(result ref.NodeRef) ref.NodeRef {
	s.node = result
	return result
}

// Lift re-parents an already-produced sibling node under the node
// currently being entered. This is the library's strategy for
// left-recursion: a hand-written rule parses the lowest-precedence
// right-hand operand first, then repeatedly lifts it under a new
// self-referential node as higher-precedence operators are found, instead
// of recursing directly into its own rule.
func (s *Session) Lift(child ref.NodeRef) {
	start, _ := s.p.b.NodeSpan(s.node)
	childStart, childLen := s.p.b.NodeSpan(child)
	s.p.b.SetParent(child, s.node)
	s.p.b.AppendChild(s.node, ref.FromNode(child, nil))
	if childStart < start || start == 0 {
		s.p.b.SetSpan(s.node, childStart, childLen)
	}
}

// SiteRef returns a SiteRef for the token k positions ahead of the cursor
// (0 is the next unconsumed token).
func (s *Session) SiteRef(k int) ref.SiteRef {
	idx := s.p.idx + k
	if idx >= s.p.toks.Len() {
		return ref.NewSiteRef(ref.NilTokenRef())
	}
	return ref.NewSiteRef(s.p.b.TokenAt(idx))
}

// NodeRef returns the ref of the node currently under construction.
func (s *Session) NodeRef() ref.NodeRef { return s.node }

// ParentRef always returns the nil NodeRef: the engine records a node's
// parent only after its rule returns, and the Session does not track the
// enclosing node.
func (s *Session) ParentRef() ref.NodeRef {
	return ref.NilNodeRef()
}

// Failure records a syntax error discovered by the hand-written rule body.
func (s *Session) Failure(err SyntaxError) {
	s.p.errors = append(s.p.errors, err)
}
