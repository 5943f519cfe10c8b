// Package aerr defines the analyzer's error taxonomy: a single Error type
// carrying a message plus a cause chain, Is/Unwrap compatible with the
// standard errors package, and the normal/abnormal sentinel split described
// in spec.md §7. Named aerr rather than errors to avoid shadowing the
// standard library package in every file that needs both.
package aerr

import (
	"errors"

	"github.com/dekarrin/sturgeon/internal/util"
)

// Normal sentinels: expected control flow a caller should handle without
// treating it as a bug.
var (
	ErrInterrupted     = errors.New("task was interrupted")
	ErrTimeout         = errors.New("attribute evaluation exceeded its deadline")
	ErrMissingDocument = errors.New("no document with that id is registered")
)

// Abnormal sentinels: misuse of the library. IsAbnormal reports them as
// abnormal whatever the debug setting, so UnwrapAbnormal panics on them in
// debug and release alike; debug only decides whether ErrTimeout is
// abnormal too.
var (
	ErrUninitSemantics = errors.New("attempted to access node semantics before they were bound")
	ErrInvariant       = errors.New("internal invariant violation")
)

// Error is a message plus a chain of causes, matched against the sentinels
// above (or any other error) via errors.Is.
type Error struct {
	msg   string
	cause []error
}

// New creates an Error with msg, wrapping causes so that errors.Is(err, c)
// holds for every c in causes.
func New(msg string, causes ...error) Error {
	e := Error{msg: msg}
	if len(causes) > 0 {
		e.cause = make([]error, len(causes))
		copy(e.cause, causes)
	}
	return e
}

// Error returns e's message, appending its causes' messages (joined as a
// text list: "a", "a and b", or "a, b, and c") if any are set; if no message
// was given but causes were, the joined cause messages alone are returned.
func (e Error) Error() string {
	if len(e.cause) == 0 {
		return e.msg
	}
	causeMsgs := make([]string, len(e.cause))
	for i, c := range e.cause {
		causeMsgs[i] = c.Error()
	}
	joined := util.MakeTextList(causeMsgs)
	if e.msg == "" {
		return joined
	}
	return e.msg + ": " + joined
}

// Unwrap exposes every cause to the standard errors API.
func (e Error) Unwrap() []error {
	if len(e.cause) == 0 {
		return nil
	}
	return e.cause
}

// Is reports whether target equals e itself (same message and causes) or
// one of e's causes.
func (e Error) Is(target error) bool {
	if t, ok := target.(Error); ok {
		if e.msg != t.msg || len(e.cause) != len(t.cause) {
			return false
		}
		for i := range e.cause {
			if e.cause[i] != t.cause[i] {
				return false
			}
		}
		return true
	}
	for _, c := range e.cause {
		if c == target {
			return true
		}
		if errors.Is(c, target) {
			return true
		}
	}
	return false
}

// IsAbnormal reports whether err matches one of the abnormal sentinels, or
// matches ErrTimeout while debug is true (spec.md §7: timeout is abnormal in
// debug, normal in release).
func IsAbnormal(err error, debug bool) bool {
	if errors.Is(err, ErrUninitSemantics) || errors.Is(err, ErrInvariant) {
		return true
	}
	if debug && errors.Is(err, ErrTimeout) {
		return true
	}
	return false
}

// UnwrapAbnormal returns err unchanged if it is a normal error. If err is
// abnormal for the given debug setting, it panics instead of returning,
// so that abnormal conditions are caught at their source during
// development rather than silently handled by a caller that only expects
// normal control flow.
func UnwrapAbnormal(err error, debug bool) error {
	if err == nil {
		return nil
	}
	if IsAbnormal(err, debug) {
		panic(err)
	}
	return err
}
