package doc

import (
	"testing"

	"github.com/dekarrin/sturgeon/buffer"
	"github.com/dekarrin/sturgeon/internal/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Document_DebugDump_RoundTrips(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := NewMutable("1, 2, 3", csvConfig())
	require.Empty(d.Errors())

	dump := d.DebugDump()
	require.NotEmpty(dump)

	var decoded DebugNode
	n, err := encoding.Decode(dump, &decoded)
	require.NoError(err)
	assert.Equal(len(dump), n)

	assert.Equal(NodeList, decoded.Kind)
	assert.Equal(0, decoded.Start)
	assert.Equal(7, decoded.Length, `"1, 2, 3" is 7 characters long`)
	assert.Len(decoded.Children, 3, "one DebugNode per item node; comma tokens are not node children")
}

func Test_Document_DebugDump_ChangesAcrossEdit(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := NewMutable("1, 2", csvConfig())
	require.Empty(d.Errors())
	before := d.DebugDump()

	require.NoError(d.Write(buffer.Span{Start: 3, End: 4}, "99"))
	after := d.DebugDump()

	assert.NotEqual(before, after, "an edit that changes the tree's span should change its debug dump")
}
