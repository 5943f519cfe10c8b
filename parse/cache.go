package parse

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dekarrin/sturgeon/ref"
)

// cacheKey identifies a primary-rule invocation: the rule being descended
// into, the token site it starts at, and a hash of enough trailing context
// (the kinds of a handful of preceding tokens) to distinguish invocations
// that start at the same site but would parse differently depending on
// what came immediately before — e.g. a trivia-swallowing rule whose
// result depends on whether the preceding token attached as a comment.
type cacheKey struct {
	rule        NodeKind
	startSite   int
	lookbackSum uint64
}

type cacheEntry struct {
	node       ref.NodeRef
	consumed   int // number of tokens consumed by this rule invocation
	spanLength int
}

// Cache is the primary-rule subtree cache keyed by (rule kind, start site,
// lookback-window hash). It is a thin, bounded wrapper over
// hashicorp/golang-lru/v2, generalizing the one-shot, always-reparse model
// of a batch parser into something that can skip work an incremental
// reparse doesn't need to repeat.
type Cache struct {
	lru *lru.Cache[cacheKey, cacheEntry]
}

// NewCache returns a Cache holding at most capacity entries.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	c, _ := lru.New[cacheKey, cacheEntry](capacity)
	return &Cache{lru: c}
}

func lookbackHash(toks TokenSource, beforeIdx int, window int) uint64 {
	var h uint64 = 14695981039346656037 // FNV offset basis
	for i := beforeIdx - window; i < beforeIdx; i++ {
		var k int
		if i >= 0 && i < toks.Len() {
			k = int(toks.At(i).Kind)
		} else {
			k = -1
		}
		h ^= uint64(k)
		h *= 1099511628211 // FNV prime
	}
	return h
}

// Get looks up a cached result for (rule, startIdx) given the token stream
// up to that point for lookback hashing.
func (c *Cache) Get(rule NodeKind, toks TokenSource, startIdx int) (cacheEntry, bool) {
	if c == nil || c.lru == nil {
		return cacheEntry{}, false
	}
	startSite := -1
	if startIdx < toks.Len() {
		startSite = toks.At(startIdx).Start
	}
	key := cacheKey{rule: rule, startSite: startSite, lookbackSum: lookbackHash(toks, startIdx, 2)}
	return c.lru.Get(key)
}

// Put stores a rule invocation's result.
func (c *Cache) Put(rule NodeKind, toks TokenSource, startIdx int, entry cacheEntry) {
	if c == nil || c.lru == nil {
		return
	}
	startSite := -1
	if startIdx < toks.Len() {
		startSite = toks.At(startIdx).Start
	}
	key := cacheKey{rule: rule, startSite: startSite, lookbackSum: lookbackHash(toks, startIdx, 2)}
	c.lru.Add(key, entry)
}

// Invalidate drops every cached entry starting at or after site. Used when
// an edit touches the document so stale subtree starts are never handed
// back out.
func (c *Cache) Invalidate(fromSite int) {
	if c == nil || c.lru == nil {
		return
	}
	for _, key := range c.lru.Keys() {
		if key.startSite >= fromSite || key.startSite == -1 {
			c.lru.Remove(key)
		}
	}
}
