package lex

import (
	"golang.org/x/text/cases"
)

// CaseFold wraps a Dfa so it matches case-insensitively: the input is
// Unicode case-folded before being handed to the wrapped Dfa, so a Dfa
// written against the folded form also matches upper/lower/title variants.
// Lookback is passed through unchanged. When folding changes the rune count
// of the input, Match falls back to the unfolded runes and no folding
// applies.
type CaseFold struct {
	Dfa
	caser cases.Caser
}

// NewCaseFold wraps inner so Match compares case-insensitively.
func NewCaseFold(inner Dfa) CaseFold {
	return CaseFold{Dfa: inner, caser: cases.Fold()}
}

func (c CaseFold) Match(src []rune, offset int) (Kind, int, bool) {
	folded := []rune(c.caser.String(string(src)))
	if len(folded) != len(src) {
		// Folding occasionally changes rune count (e.g. German ß -> "ss");
		// an offset computed against src wouldn't line up with folded, so
		// fall back to matching the original runes rather than risk a
		// misaligned match.
		return c.Dfa.Match(src, offset)
	}
	return c.Dfa.Match(folded, offset)
}
