package parse

import "github.com/dekarrin/sturgeon/lex"

// leftmostOf computes the set of token kinds expr can legally begin with,
// trusting the grammar's declared per-rule Leftmost sets for MatchNode
// references rather than re-deriving them — per spec.md §4.E the grammar
// itself supplies leftmost sets; this function only propagates them
// through the rule-expression combinators.
func leftmostOf(expr RuleExpr, g *Grammar) map[lex.Kind]bool {
	switch e := expr.(type) {
	case Seq:
		out := map[lex.Kind]bool{}
		for _, item := range e.Items {
			for k := range leftmostOf(item, g) {
				out[k] = true
			}
			if !nullable(item, g) {
				break
			}
		}
		return out
	case Choice:
		out := map[lex.Kind]bool{}
		for _, opt := range e.Options {
			for k := range leftmostOf(opt, g) {
				out[k] = true
			}
		}
		return out
	case Repeat:
		return leftmostOf(e.Item, g)
	case Opt:
		return leftmostOf(e.Item, g)
	case Capture:
		return leftmostOf(e.Item, g)
	case MatchToken:
		return map[lex.Kind]bool{e.Kind: true}
	case MatchNode:
		if rule, ok := g.Rules[e.Kind]; ok {
			return rule.Leftmost
		}
		return nil
	default:
		return nil
	}
}

// nullable reports whether expr may legally match zero tokens, used to
// decide whether Seq prediction must also consider the item following it.
func nullable(expr RuleExpr, g *Grammar) bool {
	switch e := expr.(type) {
	case Opt:
		return true
	case Repeat:
		return true
	case Capture:
		return nullable(e.Item, g)
	case Seq:
		for _, item := range e.Items {
			if !nullable(item, g) {
				return false
			}
		}
		return true
	case Choice:
		for _, opt := range e.Options {
			if nullable(opt, g) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func in(set map[lex.Kind]bool, k lex.Kind) bool {
	return set != nil && set[k]
}
