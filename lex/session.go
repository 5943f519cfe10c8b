package lex

// scanSession is the concrete Session the Scanner drives its own scan loop
// through (spec.md §4.D: "the session owns position state"). It is also
// exposed via NewSession for grammar-derivation tooling that wants to drive
// a hand-written lexer manually, the same way a hand-written parse rule
// drives a parse.Session.
type scanSession struct {
	src    []rune
	pos    int
	tokens []Token
}

// NewSession returns a Session over src starting at offset, suitable for a
// hand-written lexer hook that submits tokens itself rather than going
// through a Dfa.
func NewSession(src []rune, offset int) Session {
	return &scanSession{src: src, pos: offset}
}

func (s *scanSession) AdvanceChar() (rune, bool) {
	if s.pos >= len(s.src) {
		return 0, false
	}
	r := s.src[s.pos]
	s.pos++
	return r, true
}

func (s *scanSession) SubmitToken(kind Kind, start, end int) {
	s.tokens = append(s.tokens, Token{Kind: kind, Start: start, Length: end - start})
}

// RequestRestart rewinds the cursor to site and discards any submitted
// tokens that start at or after it, so a restarted scan never leaves
// duplicate or overlapping tokens behind.
func (s *scanSession) RequestRestart(site int) {
	s.pos = site
	for len(s.tokens) > 0 && s.tokens[len(s.tokens)-1].Start >= site {
		s.tokens = s.tokens[:len(s.tokens)-1]
	}
}
