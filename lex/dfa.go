package lex

// Dfa is the minimal contract a compiled, grammar-derived transition table
// must satisfy: given a cursor over the source runes, return the longest
// match starting there and its kind, or ok=false if nothing matches (the
// scanner then emits a Mismatch token). Dfa implementations must never
// match the empty string; the scanner treats a zero-length match as a
// Mismatch of length 1 to preserve invariant I2.
//
// Conflicts between equal-priority rules, and priority ordering among
// overlapping rules, are resolved at grammar-build time by the
// grammar-derivation collaborator (out of scope here, see spec.md §1); by
// the time a Dfa reaches this package it always returns a single,
// unambiguous longest match.
type Dfa interface {
	// Match returns the kind and length of the longest match beginning at
	// src[offset:], or ok=false if no rule matches there.
	Match(src []rune, offset int) (kind Kind, length int, ok bool)

	// Lookback returns how many characters the incremental rescanner steps
	// left of the token touched by an edit before restarting the DFA. Must
	// be >= 1. Grammars with trailing-character-sensitive literals (e.g.
	// a float literal ending in ".") raise this to capture enough left
	// context to re-derive the correct token boundary.
	Lookback() int
}

// Session is the interface the scanner drives while tokenizing; it owns
// position state and token submission. Scanner's own scan loop is driven
// through a Session (see scanFrom), and the same interface is exposed via
// NewSession for grammar-derivation tooling that wants to drive a
// hand-written lexer manually (e.g. a token class the DFA can't express),
// the way a hand-written parse rule drives a parse.Session.
type Session interface {
	// AdvanceChar consumes and returns the next input rune, or ok=false at
	// end of input.
	AdvanceChar() (r rune, ok bool)

	// SubmitToken records a completed token spanning [start, end).
	SubmitToken(kind Kind, start, end int)

	// RequestRestart rewinds the session's cursor to site, discarding any
	// runes consumed past that point. Used to implement backtracking DFAs.
	RequestRestart(site int)
}
