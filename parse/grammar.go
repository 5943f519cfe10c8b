// Package parse implements the error-resilient syntax engine: an LL(1)-style
// driver interpreting grammar-declared rule expressions, a hand-written
// parser hook for left-recursion and other cases the driver can't express,
// insert-mode/panic-mode error recovery, and a primary-rule subtree cache
// for incremental reparse.
package parse

import "github.com/dekarrin/sturgeon/lex"

// NodeKind is a syntax-node class discriminant. Grammars declare their own
// enum of kinds, one of which is the designated root.
type NodeKind int

// CaptureKind distinguishes the shape of a named capture on a rule.
type CaptureKind int

const (
	CaptureNodeSingle CaptureKind = iota
	CaptureTokenSingle
	CaptureNodeVec
	CaptureTokenVec
)

// CaptureSpec declares one named, typed capture a rule's matched symbols
// populate.
type CaptureSpec struct {
	Name string
	Kind CaptureKind
}

// RuleExpr is a finite-lookahead rule expression: sequence, choice,
// repetition, optional, or a match against a token/node kind.
type RuleExpr interface{ isRuleExpr() }

type Seq struct{ Items []RuleExpr }
type Choice struct{ Options []RuleExpr }
type Repeat struct{ Item RuleExpr }
type Opt struct{ Item RuleExpr }

// Capture wraps an inner expression, binding its matched value(s) to a
// named capture when the rule succeeds.
type Capture struct {
	Name string
	Item RuleExpr
}

// MatchToken matches a single token of the given kind.
type MatchToken struct{ Kind lex.Kind }

// MatchNode recursively descends into the rule for the given node kind.
type MatchNode struct{ Kind NodeKind }

func (Seq) isRuleExpr()        {}
func (Choice) isRuleExpr()     {}
func (Repeat) isRuleExpr()     {}
func (Opt) isRuleExpr()        {}
func (Capture) isRuleExpr()    {}
func (MatchToken) isRuleExpr() {}
func (MatchNode) isRuleExpr()  {}

// RecoverySpec declares the halting tokens and paired group tokens used by
// panic-mode recovery for a rule.
type RecoverySpec struct {
	// Halting tokens stop panic-mode consumption at the outer nesting
	// level.
	Halting map[lex.Kind]bool
	// GroupOpen/GroupClose declare bracket pairs that are skipped as atomic
	// units during panic-mode recovery, regardless of halting tokens
	// appearing inside them.
	GroupOpen  map[lex.Kind]lex.Kind // open -> close
	GroupClose map[lex.Kind]bool
}

// IsHalting returns whether k is a halting token for this recovery spec.
func (r RecoverySpec) IsHalting(k lex.Kind) bool {
	return r.Halting != nil && r.Halting[k]
}

// HandWrittenFunc is a rule body supplied directly by the grammar instead
// of a generated RuleExpr. It receives a Session exposing single-token
// lookahead, advance, cache-aware descent, manual enter/leave, lift (for
// left recursion), and reference helpers.
type HandWrittenFunc func(s *Session) error

// RuleDef is everything the grammar declares about one node kind.
type RuleDef struct {
	Kind NodeKind

	// Leftmost is the set of token kinds that can begin this rule. Required
	// even for hand-written rules, since call sites predict on it.
	Leftmost map[lex.Kind]bool

	// Body is the generated rule expression; nil if HandWritten is set.
	Body RuleExpr
	// HandWritten replaces Body with a user-supplied parsing function.
	HandWritten HandWrittenFunc

	Captures []CaptureSpec

	// Trivia overrides the grammar-wide trivia set for this rule, if
	// non-nil.
	Trivia map[lex.Kind]bool

	// Primary marks this rule's subtrees as cached for incremental
	// reparse; secondary rules are always reparsed from scratch.
	Primary bool

	// ScopeRoot declares this node kind a scope root: the unit of direct
	// invalidation on an edit. Only the scoped attributes bound to a scope
	// root node are invalidated directly when an edit touches its subtree;
	// every other attribute revalidates lazily through the dependency
	// graph.
	ScopeRoot bool

	Recovery RecoverySpec
}

// Grammar is the complete syntax description: a root node kind plus a rule
// for every parsable kind.
type Grammar struct {
	Root   NodeKind
	Rules  map[NodeKind]*RuleDef
	Trivia map[lex.Kind]bool
}

// BeginsWith returns whether kind's rule can legally begin with token k,
// consulting the grammar-wide leftmost set the rule declared.
func (g *Grammar) BeginsWith(kind NodeKind, k lex.Kind) bool {
	rule, ok := g.Rules[kind]
	if !ok {
		return false
	}
	return rule.Leftmost[k]
}

// IsScopeRoot reports whether kind is declared a scope root.
func (g *Grammar) IsScopeRoot(kind NodeKind) bool {
	rule, ok := g.Rules[kind]
	if !ok {
		return false
	}
	return rule.ScopeRoot
}

func (r *RuleDef) triviaSet(g *Grammar) map[lex.Kind]bool {
	if r.Trivia != nil {
		return r.Trivia
	}
	return g.Trivia
}
