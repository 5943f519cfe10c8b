package lex

// Scanner drives a Dfa over a rune slice to produce a token stream, and
// implements the bounded incremental rescan described in spec.md §4.D.
type Scanner struct {
	dfa Dfa
}

// NewScanner returns a Scanner driving dfa.
func NewScanner(dfa Dfa) *Scanner {
	return &Scanner{dfa: dfa}
}

// ScanAll tokenizes src from scratch. It never returns an error; runs of
// input matching no rule become Mismatch tokens. The returned stream is a
// gap-free, non-overlapping, non-empty-token cover of src (invariant I2).
func (s *Scanner) ScanAll(src []rune) []Token {
	return s.scanFrom(src, 0)
}

// scanFrom tokenizes src starting at offset, merging consecutive
// unrecognized runs into a single Mismatch token. Position state and token
// submission are owned by a Session (spec.md §4.D), not local variables:
// the Dfa still sees the full rune slice to find its longest match, but
// the loop only ever advances or restarts through sess.
func (s *Scanner) scanFrom(src []rune, offset int) []Token {
	sess := &scanSession{src: src, pos: offset}
	for sess.pos < len(src) {
		start := sess.pos
		kind, length, ok := s.dfa.Match(src, start)
		if !ok || length <= 0 {
			// Merge into a trailing Mismatch token if one is already open.
			if n := len(sess.tokens); n > 0 && sess.tokens[n-1].Kind == Mismatch && sess.tokens[n-1].End() == start {
				sess.tokens[n-1].Length++
			} else {
				sess.SubmitToken(Mismatch, start, start+1)
			}
			sess.AdvanceChar()
			continue
		}
		sess.SubmitToken(kind, start, start+length)
		for i := 0; i < length; i++ {
			sess.AdvanceChar()
		}
	}
	return sess.tokens
}

// RescanResult describes how to splice a rescan's output into an existing
// token stream. Tokens old[:ReplaceStart] and old[ReplaceEnd:] (the latter
// with sites shifted by Delta) keep their pre-edit identity; New replaces
// everything in between.
type RescanResult struct {
	ReplaceStart int
	ReplaceEnd   int
	New          []Token
	Delta        int
}

// Rescan recomputes the token stream around an edit. old is the token
// stream before the edit (in pre-edit sites); editStart/editEnd is the
// pre-edit span that was replaced; newSrc is the full post-edit source;
// delta is len(replacement text in runes) - (editEnd - editStart).
//
// The algorithm: locate the token touching editStart, step left by the
// Dfa's Lookback, and re-tokenize forward from there until the new stream
// converges with the shifted old stream — defined as producing a token
// whose (kind, start) matches some old token at or after editEnd, once that
// old token's start is shifted by delta. If no convergence is found before
// end of input, the entire remainder is re-tokenized (rescan may extend
// arbitrarily far right, and always reaches EOI on a fresh input).
func (s *Scanner) Rescan(old []Token, editStart, editEnd int, newSrc []rune, delta int) RescanResult {
	touchedIdx := locateTouching(old, editStart)
	lookback := s.dfa.Lookback()
	if lookback < 1 {
		lookback = 1
	}

	restartSite := editStart
	if touchedIdx >= 0 {
		restartSite = old[touchedIdx].Start
	}
	restartSite -= lookback
	if restartSite < 0 {
		restartSite = 0
	}

	// Don't reuse any old token whose span might have been touched by the
	// restart window.
	replaceStart := touchedIdx
	for replaceStart > 0 && old[replaceStart-1].End() > restartSite {
		replaceStart--
	}
	if replaceStart < 0 {
		replaceStart = 0
	}
	// Restart at a token boundary, so the rescan covers all of the first
	// replaced token and leaves no gap after the kept prefix.
	if replaceStart < len(old) && old[replaceStart].Start < restartSite {
		restartSite = old[replaceStart].Start
	}

	newTokens := s.scanFrom(newSrc, restartSite)

	// Search for convergence: a new token whose (kind, start) matches an
	// old token (at or after editEnd, pre-shift) once shifted by delta.
	for i, nt := range newTokens {
		for j := replaceStart; j < len(old); j++ {
			ot := old[j]
			if ot.Start < editEnd {
				continue
			}
			if ot.Kind == nt.Kind && ot.Start+delta == nt.Start {
				return RescanResult{
					ReplaceStart: replaceStart,
					ReplaceEnd:   j,
					New:          newTokens[:i],
					Delta:        delta,
				}
			}
		}
	}

	// No convergence: the whole remainder was re-tokenized.
	return RescanResult{
		ReplaceStart: replaceStart,
		ReplaceEnd:   len(old),
		New:          newTokens,
		Delta:        delta,
	}
}

// locateTouching returns the index of the last token in old that touches
// site (overlaps, contains, or boundary-contacts), or -1 if site is before
// the first token.
func locateTouching(old []Token, site int) int {
	for i := len(old) - 1; i >= 0; i-- {
		if old[i].Touches(site) {
			return i
		}
		if old[i].End() < site {
			return i
		}
	}
	return -1
}
