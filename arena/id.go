// Package arena provides process-wide unique identifiers and a generational
// slot arena. Every object that must be addressed from outside its owner
// (documents, tokens, nodes) is named through an Id or an Entry rather than
// through a raw pointer, so that references can be compared, copied, and
// checked for staleness cheaply.
package arena

import "github.com/google/uuid"

// Id is a process-wide unique identifier, cheap to copy and compare. It is
// attached to every reference derived from the object it names (see the ref
// package) so that a reference can never be dereferenced against the wrong
// owner.
type Id struct {
	u    uuid.UUID
	name string
}

// NewId returns a fresh, globally unique Id.
func NewId() Id {
	return Id{u: uuid.New()}
}

// IsNil returns whether id is the zero Id. A zero Id is never returned by
// NewId and never matches a real object.
func (id Id) IsNil() bool {
	return id.u == uuid.Nil
}

// Named returns a copy of id carrying the given display name. Equal ignores
// the name, but the name is part of the Id value, so == and map lookups
// treat a named copy as different from the unnamed Id.
func (id Id) Named(name string) Id {
	id.name = name
	return id
}

// Name returns the display name set via Named, or the empty string if none
// was set.
func (id Id) Name() string {
	return id.name
}

// String returns a short diagnostic representation of id.
func (id Id) String() string {
	if id.name != "" {
		return id.name + "#" + id.u.String()
	}
	return id.u.String()
}

// Equal returns whether id and other name the same object. Display names are
// not considered.
func (id Id) Equal(other Id) bool {
	return id.u == other.u
}
