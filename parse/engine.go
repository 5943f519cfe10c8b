package parse

import (
	"github.com/dekarrin/sturgeon/lex"
	"github.com/dekarrin/sturgeon/ref"
)

// Engine drives a Grammar over a token stream, producing a Tree. It
// supports both the generated LL(1)-style rule expressions and
// hand-written parser hooks, with insert-mode and panic-mode error
// recovery and a primary-rule subtree cache for incremental reparse.
type Engine struct {
	g     *Grammar
	cache *Cache
}

// NewEngine returns an Engine for g with a subtree cache of the given
// capacity (0 selects a sensible default).
func NewEngine(g *Grammar, cacheCapacity int) *Engine {
	return &Engine{g: g, cache: NewCache(cacheCapacity)}
}

// InvalidateFrom drops cached primary-rule results starting at or after
// site, called by the owning Document before an incremental reparse.
func (e *Engine) InvalidateFrom(site int) {
	e.cache.Invalidate(site)
}

// IsScopeRoot reports whether kind is declared a scope root in the
// grammar this Engine drives.
func (e *Engine) IsScopeRoot(kind NodeKind) bool {
	return e.g.IsScopeRoot(kind)
}

// Parse runs the grammar's root rule over the full token stream.
func (e *Engine) Parse(toks TokenSource, b Builder) *Tree {
	p := &parserState{engine: e, toks: toks, b: b}
	root := p.descend(e.g.Root)
	return &Tree{Root: root, Errors: p.errors}
}

// parserState is the mutable cursor + accumulated-error state for one
// Parse call. It is not safe for concurrent use; each Parse gets its own.
type parserState struct {
	engine *Engine
	toks   TokenSource
	b      Builder
	idx    int
	errors []SyntaxError
}

func (p *parserState) peek() lex.Kind {
	if p.idx >= p.toks.Len() {
		return lex.EOI
	}
	return p.toks.At(p.idx).Kind
}

func (p *parserState) skipTrivia(trivia map[lex.Kind]bool) {
	for p.idx < p.toks.Len() && trivia[p.toks.At(p.idx).Kind] {
		p.idx++
	}
}

// descend parses one invocation of the rule for kind, consulting the cache
// if the rule is primary, and returns the resulting node ref. It returns
// the nil ref only when the grammar has no rule for kind; a fully abandoned
// parse still yields a partial node so the tree-covers-tokens guarantee,
// I3, holds.
func (p *parserState) descend(kind NodeKind) ref.NodeRef {
	rule, ok := p.engine.g.Rules[kind]
	if !ok {
		return ref.NilNodeRef()
	}

	p.skipTrivia(rule.triviaSet(p.engine.g))

	if rule.Primary {
		if hit, ok := p.engine.cache.Get(kind, p.toks, p.idx); ok {
			if p.b.NodeKind(hit.node) == kind {
				p.idx += hit.consumed
				return hit.node
			}
		}
	}

	startIdx := p.idx
	startSite := p.siteAt(startIdx)

	var node ref.NodeRef
	if rule.HandWritten != nil {
		sess := &Session{p: p, rule: rule}
		sess.node = p.b.NewNode(kind)
		if err := rule.HandWritten(sess); err != nil {
			p.recordFailure(rule, err)
		}
		node = sess.node
	} else {
		node = p.b.NewNode(kind)
		captures := map[string]any{}
		p.matchExpr(rule.Body, rule, captures, node)
		for name, val := range captures {
			p.b.SetCapture(node, name, val)
		}
	}

	endSite := p.siteAt(p.idx)
	p.b.SetSpan(node, startSite, endSite-startSite)

	if rule.Primary {
		p.engine.cache.Put(kind, p.toks, startIdx, cacheEntry{
			node:       node,
			consumed:   p.idx - startIdx,
			spanLength: endSite - startSite,
		})
	}

	return node
}

func (p *parserState) siteAt(idx int) int {
	if idx >= p.toks.Len() {
		if p.toks.Len() == 0 {
			return 0
		}
		return p.toks.At(p.toks.Len() - 1).End()
	}
	return p.toks.At(idx).Start
}

// matchExpr interprets expr against the current cursor, populating
// children of node and entries of captures. It never returns an error
// value; recovery decisions are made inline and folded into p.errors.
func (p *parserState) matchExpr(expr RuleExpr, rule *RuleDef, captures map[string]any, node ref.NodeRef) {
	// Trivia is skipped before and after every expression, so it may sit
	// between any two matches of a rule, not only ahead of the rule itself.
	trivia := rule.triviaSet(p.engine.g)
	p.skipTrivia(trivia)
	defer p.skipTrivia(trivia)
	switch e := expr.(type) {
	case Seq:
		p.matchSeq(e.Items, rule, captures, node)
	case Choice:
		p.matchChoice(e, rule, captures, node)
	case Repeat:
		before := map[string]bool{}
		for name := range captures {
			before[name] = true
		}
		for in(leftmostOf(e.Item, p.engine.g), p.peek()) {
			p.matchExpr(e.Item, rule, captures, node)
		}
		// A capture first written inside a Repeat is a vector even when the
		// repetition matched only once.
		for name, val := range captures {
			if before[name] {
				continue
			}
			switch v := val.(type) {
			case ref.TokenRef:
				captures[name] = []ref.TokenRef{v}
			case ref.NodeRef:
				captures[name] = []ref.NodeRef{v}
			}
		}
	case Opt:
		if in(leftmostOf(e.Item, p.engine.g), p.peek()) {
			p.matchExpr(e.Item, rule, captures, node)
		}
	case Capture:
		p.matchCapture(e, rule, captures, node)
	case MatchToken:
		p.matchOneToken(e.Kind, rule, node)
	case MatchNode:
		child := p.descend(e.Kind)
		p.b.AppendChild(node, ref.FromNode(child, nil))
	}
}

func (p *parserState) matchSeq(items []RuleExpr, rule *RuleDef, captures map[string]any, node ref.NodeRef) {
	for i, item := range items {
		lm := leftmostOf(item, p.engine.g)
		if lm != nil && !in(lm, p.peek()) && !nullable(item, p.engine.g) {
			// Try insert-mode: does the *next* item's leftmost fit here?
			if i+1 < len(items) && in(leftmostOf(items[i+1], p.engine.g), p.peek()) {
				p.emitInsertError(rule, lm)
				continue // skip this item entirely; its capture stays unset (nil)
			}
			p.panicRecover(rule)
			return
		}
		p.matchExpr(item, rule, captures, node)
	}
}

func (p *parserState) matchChoice(c Choice, rule *RuleDef, captures map[string]any, node ref.NodeRef) {
	for _, opt := range c.Options {
		if in(leftmostOf(opt, p.engine.g), p.peek()) {
			p.matchExpr(opt, rule, captures, node)
			return
		}
	}
	p.panicRecover(rule)
}

func (p *parserState) matchCapture(c Capture, rule *RuleDef, captures map[string]any, node ref.NodeRef) {
	switch inner := c.Item.(type) {
	case MatchToken:
		tok := p.matchOneToken(inner.Kind, rule, node)
		appendCapture(captures, c.Name, tok, true)
	case MatchNode:
		child := p.descend(inner.Kind)
		p.b.AppendChild(node, ref.FromNode(child, nil))
		appendCapture(captures, c.Name, child, false)
	default:
		// Capture wraps a composite expression (e.g. inside a Repeat): just
		// evaluate it for side effects on the tree; scalar capture value is
		// not well-defined for composites, so nothing is recorded here
		// beyond children already appended by the recursive call.
		p.matchExpr(c.Item, rule, captures, node)
	}
}

func appendCapture(captures map[string]any, name string, value any, isToken bool) {
	existing, ok := captures[name]
	if !ok {
		captures[name] = value
		return
	}
	// Second write to the same name means this is a repeated capture;
	// promote to a vector.
	switch v := existing.(type) {
	case []ref.TokenRef:
		captures[name] = append(v, value.(ref.TokenRef))
	case []ref.NodeRef:
		captures[name] = append(v, value.(ref.NodeRef))
	case ref.TokenRef:
		captures[name] = []ref.TokenRef{v, value.(ref.TokenRef)}
	case ref.NodeRef:
		captures[name] = []ref.NodeRef{v, value.(ref.NodeRef)}
	}
}

func (p *parserState) matchOneToken(kind lex.Kind, rule *RuleDef, node ref.NodeRef) ref.TokenRef {
	if p.peek() != kind {
		p.emitInsertError(rule, map[lex.Kind]bool{kind: true})
		return ref.NilTokenRef()
	}
	tok := p.b.TokenAt(p.idx)
	p.b.AppendChild(node, ref.FromToken(tok, nil))
	p.idx++
	return tok
}

func (p *parserState) emitInsertError(rule *RuleDef, expected map[lex.Kind]bool) {
	site := p.siteAt(p.idx)
	p.errors = append(p.errors, SyntaxError{
		Span:     SpanInfo{Start: site, End: site},
		Rule:     rule.Kind,
		Expected: keys(expected),
		Found:    p.peek(),
		Recovery: RecoveryInsert,
	})
}

// panicRecover consumes tokens until rule's recovery spec sees a halting
// token at the outer nesting level, skipping any paired group brackets as
// atomic units. It abandons on end-of-input or an unmatched halting token
// found only inside an unclosed group.
func (p *parserState) panicRecover(rule *RuleDef) {
	start := p.siteAt(p.idx)
	depth := 0
	for p.idx < p.toks.Len() {
		k := p.peek()
		if depth == 0 && rule.Recovery.IsHalting(k) {
			p.errors = append(p.errors, SyntaxError{
				Span:     SpanInfo{Start: start, End: p.siteAt(p.idx)},
				Rule:     rule.Kind,
				Found:    k,
				Recovery: RecoveryPanic,
			})
			return
		}
		if closeKind, isOpen := rule.Recovery.GroupOpen[k]; isOpen {
			_ = closeKind
			depth++
		} else if rule.Recovery.GroupClose[k] {
			if depth > 0 {
				depth--
			}
		}
		p.idx++
	}
	p.errors = append(p.errors, SyntaxError{
		Span:     SpanInfo{Start: start, End: p.siteAt(p.idx)},
		Rule:     rule.Kind,
		Found:    lex.EOI,
		Recovery: RecoveryAbandoned,
	})
}

func (p *parserState) recordFailure(rule *RuleDef, err error) {
	site := p.siteAt(p.idx)
	p.errors = append(p.errors, SyntaxError{
		Span:     SpanInfo{Start: site, End: site},
		Rule:     rule.Kind,
		Found:    p.peek(),
		Recovery: RecoveryAbandoned,
	})
	_ = err
}

func keys(m map[lex.Kind]bool) []lex.Kind {
	out := make([]lex.Kind, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
