package ref

import (
	"testing"

	"github.com/dekarrin/sturgeon/arena"
	"github.com/stretchr/testify/assert"
)

// fakeResolver is a minimal in-memory Resolver used to test PolyRef
// traversal without pulling in the doc package.
type fakeResolver struct {
	nodeSpans   map[NodeRef][2]int
	nodeParents map[NodeRef]NodeRef
	nodeKids    map[NodeRef][]PolyRef
	length      int
}

func (f *fakeResolver) TokenSpan(TokenRef) (int, int, bool)   { return 0, 0, false }
func (f *fakeResolver) TokenParent(TokenRef) NodeRef          { return NilNodeRef() }
func (f *fakeResolver) SpanOfNode(n NodeRef) (int, int, bool) {
	s, ok := f.nodeSpans[n]
	if !ok {
		return 0, 0, false
	}
	return s[0], s[1], true
}
func (f *fakeResolver) NodeParent(n NodeRef) NodeRef { return f.nodeParents[n] }
func (f *fakeResolver) NodeChildren(n NodeRef) []PolyRef { return f.nodeKids[n] }
func (f *fakeResolver) NodeChild(n NodeRef, key any) (PolyRef, bool) {
	kids := f.nodeKids[n]
	if idx, ok := key.(int); ok && idx >= 0 && idx < len(kids) {
		return kids[idx], true
	}
	return NilPolyRef(), false
}
func (f *fakeResolver) EndOfInput() int { return f.length }

func Test_PolyRef_NilIsNonPanicking(t *testing.T) {
	assert := assert.New(t)

	p := NilPolyRef()
	assert.True(p.IsNil())
	assert.True(p.Parent().IsNil())
	assert.Nil(p.Children())
	assert.True(p.NextSibling().IsNil())
	assert.True(p.PrevSibling().IsNil())
	assert.True(p.GetChild(0).IsNil())
	_, _, ok := p.Span()
	assert.False(ok)
}

func Test_PolyRef_FromNilTokenRefIsNilPoly(t *testing.T) {
	assert := assert.New(t)

	res := &fakeResolver{}

	p := FromToken(TokenRef{Doc: arena.NewId(), Entry: arena.NilEntry}, res)
	assert.True(p.IsNil(), "FromToken on a nil TokenRef must produce nil PolyRef")
	assert.True(p.AsNodeRef().IsNil())
}

func Test_PolyRef_SiblingNavigation(t *testing.T) {
	assert := assert.New(t)

	doc := arena.NewId()
	res := &fakeResolver{
		nodeSpans:   map[NodeRef][2]int{},
		nodeParents: map[NodeRef]NodeRef{},
		nodeKids:    map[NodeRef][]PolyRef{},
	}

	parent := NodeRef{Doc: doc, Entry: arena.Entry{}}
	c0 := NodeRef{Doc: doc, Entry: arena.Entry{}}
	// Entries must differ; fake them via Insert through a real arena.
	a := arena.New[int]()
	parent.Entry = a.Insert(0)
	c0.Entry = a.Insert(1)
	c1 := NodeRef{Doc: doc, Entry: a.Insert(2)}
	c2 := NodeRef{Doc: doc, Entry: a.Insert(3)}

	kids := []PolyRef{FromNode(c0, res), FromNode(c1, res), FromNode(c2, res)}
	res.nodeKids[parent] = kids
	res.nodeParents[c0] = parent
	res.nodeParents[c1] = parent
	res.nodeParents[c2] = parent

	mid := FromNode(c1, res)
	assert.Equal(c0, mid.PrevSibling().AsNodeRef())
	assert.Equal(c2, mid.NextSibling().AsNodeRef())

	first := FromNode(c0, res)
	assert.True(first.PrevSibling().IsNil())

	last := FromNode(c2, res)
	assert.True(last.NextSibling().IsNil())
}

func Test_SiteRef_NilResolvesToEndOfInput(t *testing.T) {
	assert := assert.New(t)

	res := &fakeResolver{length: 42}
	s := NewSiteRef(NilTokenRef())
	site, ok := s.Resolve(res)
	assert.True(ok)
	assert.Equal(42, site)
}
