package lex

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

const (
	KindDigits Kind = FirstUserKind + iota
	KindIdent
	KindSpace
)

// simpleDfa is a tiny hand-rolled matcher for tests: runs of digits, runs of
// letters, or single spaces.
type simpleDfa struct {
	lookback int
}

func (d simpleDfa) Lookback() int {
	if d.lookback == 0 {
		return 1
	}
	return d.lookback
}

func (d simpleDfa) Match(src []rune, offset int) (Kind, int, bool) {
	if offset >= len(src) {
		return 0, 0, false
	}
	r := src[offset]
	switch {
	case unicode.IsDigit(r):
		n := 0
		for offset+n < len(src) && unicode.IsDigit(src[offset+n]) {
			n++
		}
		return KindDigits, n, true
	case unicode.IsLetter(r):
		n := 0
		for offset+n < len(src) && unicode.IsLetter(src[offset+n]) {
			n++
		}
		return KindIdent, n, true
	case r == ' ':
		return KindSpace, 1, true
	default:
		return 0, 0, false
	}
}

func Test_Scanner_ScanAll_CoversInput(t *testing.T) {
	assert := assert.New(t)

	s := NewScanner(simpleDfa{})
	src := []rune("abc 123 def")
	toks := s.ScanAll(src)

	require := assert
	require.NotEmpty(toks)

	pos := 0
	for _, tok := range toks {
		require.Equal(pos, tok.Start)
		require.Greater(tok.Length, 0, "no token may be empty")
		pos = tok.End()
	}
	require.Equal(len(src), pos, "tokens must cover the whole input")
}

func Test_Scanner_ScanAll_MismatchMerged(t *testing.T) {
	assert := assert.New(t)

	s := NewScanner(simpleDfa{})
	src := []rune("!!!abc")
	toks := s.ScanAll(src)

	assert.Equal(Mismatch, toks[0].Kind)
	assert.Equal(0, toks[0].Start)
	assert.Equal(3, toks[0].Length, "consecutive mismatched runes merge into one token")
	assert.Equal(KindIdent, toks[1].Kind)
}

func Test_Scanner_Rescan_PreservesUntouchedTail(t *testing.T) {
	assert := assert.New(t)

	s := NewScanner(simpleDfa{})
	oldSrc := []rune("abc 123 xyz")
	old := s.ScanAll(oldSrc)

	// Edit: replace "123" (sites 4..7) with "4567", delta = +1
	newSrc := []rune("abc 4567 xyz")
	res := s.Rescan(old, 4, 7, newSrc, 1)

	assert.Less(res.ReplaceEnd, len(old)+1)
	// the trailing "xyz" token should be reusable (found during convergence)
	tailOld := old[len(old)-1]
	assert.Equal(KindIdent, tailOld.Kind)

	// reconstruct full new stream manually from the splice result
	var full []Token
	full = append(full, old[:res.ReplaceStart]...)
	full = append(full, res.New...)
	for _, ot := range old[res.ReplaceEnd:] {
		shifted := ot
		shifted.Start += res.Delta
		full = append(full, shifted)
	}

	pos := 0
	for _, tok := range full {
		assert.Equal(pos, tok.Start)
		pos = tok.End()
	}
	assert.Equal(len(newSrc), pos)
}
