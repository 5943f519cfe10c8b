package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Session_AdvanceChar_OwnsPosition(t *testing.T) {
	assert := assert.New(t)

	sess := NewSession([]rune("ab"), 0)
	r, ok := sess.AdvanceChar()
	assert.True(ok)
	assert.Equal('a', r)

	r, ok = sess.AdvanceChar()
	assert.True(ok)
	assert.Equal('b', r)

	_, ok = sess.AdvanceChar()
	assert.False(ok, "end of input")
}

func Test_Session_SubmitToken_Accumulates(t *testing.T) {
	assert := assert.New(t)

	sess := NewSession([]rune("ab"), 0).(*scanSession)
	sess.SubmitToken(KindIdent, 0, 2)
	assert.Equal([]Token{{Kind: KindIdent, Start: 0, Length: 2}}, sess.tokens)
}

func Test_Session_RequestRestart_DiscardsTokensAtOrAfterSite(t *testing.T) {
	assert := assert.New(t)

	sess := NewSession([]rune("abcd"), 0).(*scanSession)
	sess.SubmitToken(KindIdent, 0, 2)
	sess.SubmitToken(KindIdent, 2, 4)
	sess.RequestRestart(2)

	assert.Equal(2, sess.pos)
	assert.Equal([]Token{{Kind: KindIdent, Start: 0, Length: 2}}, sess.tokens)
}

func Test_Scanner_ScanFrom_DrivesSessionToFullCoverage(t *testing.T) {
	assert := assert.New(t)

	s := NewScanner(simpleDfa{})
	src := []rune("ab 1")
	toks := s.scanFrom(src, 0)

	var total int
	for _, tok := range toks {
		total += tok.Length
	}
	assert.Equal(len(src), total, "scanFrom's Session-driven loop must cover the full input")
}
