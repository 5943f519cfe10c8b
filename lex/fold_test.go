package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const kindKeywordLet Kind = FirstUserKind + 100

// keywordDfa matches the literal "let", case-sensitively, and nothing else.
type keywordDfa struct{}

func (keywordDfa) Lookback() int { return 1 }

func (keywordDfa) Match(src []rune, offset int) (Kind, int, bool) {
	want := []rune("let")
	if offset+len(want) > len(src) {
		return 0, 0, false
	}
	for i, r := range want {
		if src[offset+i] != r {
			return 0, 0, false
		}
	}
	return kindKeywordLet, len(want), true
}

func Test_CaseFold_MatchesAnyCaseVariant(t *testing.T) {
	assert := assert.New(t)

	folded := NewCaseFold(keywordDfa{})

	for _, input := range []string{"let", "LET", "Let", "lEt"} {
		kind, length, ok := folded.Match([]rune(input), 0)
		assert.True(ok, "expected %q to match case-insensitively", input)
		assert.Equal(kindKeywordLet, kind)
		assert.Equal(3, length)
	}
}

func Test_CaseFold_Lookback_PassesThroughUnwrapped(t *testing.T) {
	assert := assert.New(t)
	folded := NewCaseFold(keywordDfa{})
	assert.Equal(1, folded.Lookback())
}

func Test_CaseFold_NoMatchOutsideKeyword(t *testing.T) {
	assert := assert.New(t)
	folded := NewCaseFold(keywordDfa{})
	_, _, ok := folded.Match([]rune("other"), 0)
	assert.False(ok)
}
