package analyzer

import "sync/atomic"

// Shared is a reference-counted immutable value, used so that handing a
// class snapshot or attribute value to many readers is O(1) instead of
// O(size of value). There is no weak form: spec.md §4.H only calls for
// cheap cloning of a value callers read but never mutate in place.
type Shared[T any] struct {
	val T
	rc  *atomic.Int32
}

// NewShared wraps v for reference-counted sharing.
func NewShared[T any](v T) Shared[T] {
	rc := &atomic.Int32{}
	rc.Store(1)
	return Shared[T]{val: v, rc: rc}
}

// Get returns the wrapped value. Callers must not mutate it in place;
// Shared's whole point is that every clone sees the same underlying value.
func (s Shared[T]) Get() T {
	return s.val
}

// Clone increments the reference count and returns a Shared pointing at the
// same value — the O(1) copy spec.md §4.H calls for.
func (s Shared[T]) Clone() Shared[T] {
	if s.rc != nil {
		s.rc.Add(1)
	}
	return s
}
