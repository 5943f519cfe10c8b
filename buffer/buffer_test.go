package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Buffer_AppendOnly(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	b := NewAppendOnly()
	require.NoError(b.Append("hello "))
	require.NoError(b.Append("world"))

	s, err := b.Substring(Span{0, b.Len()})
	require.NoError(err)
	assert.Equal("hello world", s)
}

func Test_Buffer_AppendOnlyRejectsWrite(t *testing.T) {
	assert := assert.New(t)

	b := NewAppendOnly()
	err := b.Write(Span{0, 0}, "x")
	assert.Error(err)
}

func Test_Buffer_WriteAppendAtEnd(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	b := NewMutable("abc")
	require.NoError(b.Write(Span{3, 3}, "def"))

	s, err := b.Substring(Span{0, b.Len()})
	require.NoError(err)
	assert.Equal("abcdef", s)
}

func Test_Buffer_WriteReplacesEntireContent(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	b := NewMutable("old content")
	require.NoError(b.Write(Span{0, b.Len()}, "new"))

	s, err := b.Substring(Span{0, b.Len()})
	require.NoError(err)
	assert.Equal("new", s)
}

func Test_Buffer_WriteMidSpan(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	b := NewMutable("hello world")
	require.NoError(b.Write(Span{6, 11}, "there"))

	s, err := b.Substring(Span{0, b.Len()})
	require.NoError(err)
	assert.Equal("hello there", s)
}

func Test_Buffer_InvalidSpanFailsFast(t *testing.T) {
	assert := assert.New(t)

	b := NewMutable("abc")

	err := b.Write(Span{2, 1}, "x")
	assert.Error(err)
	var spanErr *InvalidSpanError
	assert.ErrorAs(err, &spanErr)

	err = b.Write(Span{0, 100}, "x")
	assert.Error(err)
	assert.ErrorAs(err, &spanErr)
}

func Test_Buffer_LineIndex(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	b := NewMutable("ab\ncde\nf")
	assert.Equal(3, b.LineCount())

	l0, err := b.LineLength(0)
	require.NoError(err)
	assert.Equal(2, l0)

	l1, err := b.LineLength(1)
	require.NoError(err)
	assert.Equal(3, l1)

	site, err := b.LineColToSite(1, 1)
	require.NoError(err)
	assert.Equal(4, site) // "ab\n" is 3 chars, +1 col into "cde"

	line, col, err := b.SiteToLineCol(4)
	require.NoError(err)
	assert.Equal(1, line)
	assert.Equal(1, col)
}

func Test_Buffer_RoundTripWriteOfOwnSubstringIsNoop(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	b := NewMutable("the quick brown fox")
	span := Span{4, 9}
	sub, err := b.Substring(span)
	require.NoError(err)

	before, err := b.Substring(Span{0, b.Len()})
	require.NoError(err)

	require.NoError(b.Write(span, sub))

	after, err := b.Substring(Span{0, b.Len()})
	require.NoError(err)
	assert.Equal(before, after)
}
