package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Arena_InsertGet(t *testing.T) {
	assert := assert.New(t)

	a := New[string]()
	e := a.Insert("hello")

	got, ok := a.Get(e)
	assert.True(ok)
	assert.Equal("hello", got)
}

func Test_Arena_RemoveStalesEntry(t *testing.T) {
	assert := assert.New(t)

	a := New[string]()
	e := a.Insert("hello")

	removed, ok := a.Remove(e)
	assert.True(ok)
	assert.Equal("hello", removed)

	_, ok = a.Get(e)
	assert.False(ok, "entry should be stale after removal")
}

func Test_Arena_ReusedSlotDoesNotMatchOldEntry(t *testing.T) {
	assert := assert.New(t)

	a := New[string]()
	first := a.Insert("first")
	a.Remove(first)
	second := a.Insert("second")

	assert.Equal(first.slot, second.slot, "slot should be reused")
	assert.NotEqual(first.gen, second.gen, "generation must differ so stale refs are detectable")

	_, ok := a.Get(first)
	assert.False(ok)

	got, ok := a.Get(second)
	assert.True(ok)
	assert.Equal("second", got)
}

func Test_Arena_NilEntryNeverResolves(t *testing.T) {
	assert := assert.New(t)

	a := New[int]()
	a.Insert(42)

	_, ok := a.Get(NilEntry)
	assert.False(ok)
}

func Test_Arena_Len(t *testing.T) {
	assert := assert.New(t)

	a := New[int]()
	e1 := a.Insert(1)
	a.Insert(2)
	assert.Equal(2, a.Len())

	a.Remove(e1)
	assert.Equal(1, a.Len())
}

func Test_Arena_Iter(t *testing.T) {
	assert := assert.New(t)

	a := New[int]()
	a.Insert(1)
	a.Insert(2)
	a.Insert(3)

	seen := map[int]bool{}
	a.Iter(func(e Entry, v int) bool {
		seen[v] = true
		return true
	})

	assert.Len(seen, 3)
}

func Test_Arena_IterStopsEarly(t *testing.T) {
	assert := assert.New(t)

	a := New[int]()
	for i := 0; i < 10; i++ {
		a.Insert(i)
	}

	count := 0
	a.Iter(func(e Entry, v int) bool {
		count++
		return count < 3
	})

	assert.Equal(3, count)
}
