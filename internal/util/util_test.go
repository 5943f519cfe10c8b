package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_MakeTextList(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("", MakeTextList(nil))
	assert.Equal("a", MakeTextList([]string{"a"}))
	assert.Equal("a and b", MakeTextList([]string{"a", "b"}))
	assert.Equal("a, b, and c", MakeTextList([]string{"a", "b", "c"}))
}

func Test_MakeTextList_DoesNotMutateInput(t *testing.T) {
	assert := assert.New(t)

	items := []string{"a", "b", "c"}
	MakeTextList(items)
	assert.Equal([]string{"a", "b", "c"}, items, "the caller's slice must be unchanged")
}
