package analyzer

import "sync"

// CommonFeature holds Analyzer-wide attributes and slots that don't belong
// to any one node — grammar-wide configuration derived values, aggregate
// counters, and the like (spec.md §4.H, `ctx.common()`). Values are stored
// by name and type-asserted back by the caller, since Go has no way to
// express a heterogeneous map of Attribute[T]/Slot[T] generically.
type CommonFeature struct {
	mu     sync.Mutex
	values map[string]any
}

func newCommonFeature() *CommonFeature {
	return &CommonFeature{values: map[string]any{}}
}

// Set registers v (typically an *Attribute[T] or *Slot[T]) under name.
func (c *CommonFeature) Set(name string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = v
}

// Get returns the value registered under name, if any.
func (c *CommonFeature) Get(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[name]
	return v, ok
}
