package parse

import (
	"fmt"

	"github.com/dekarrin/sturgeon/lex"
	"github.com/dekarrin/sturgeon/ref"
)

// RecoveryKind records which recovery strategy resolved a SyntaxError, if
// any.
type RecoveryKind int

const (
	RecoveryNone RecoveryKind = iota
	RecoveryInsert
	RecoveryPanic
	RecoveryAbandoned
)

// SyntaxError carries the span, the rule that was active, the token kinds
// that would have been accepted, and how (if at all) the parser recovered.
// Expected lists token kinds only; acceptable node kinds are not recorded.
// Lex/parse are infallible at the API boundary (spec.md §7) — these are
// collected, never returned from Write.
type SyntaxError struct {
	Span     SpanInfo
	Rule     NodeKind
	Expected []lex.Kind
	Found    lex.Kind
	Recovery RecoveryKind
}

// SpanInfo is the [Start, End) character span a SyntaxError refers to.
type SpanInfo struct {
	Start, End int
}

func (e SyntaxError) Error() string {
	switch e.Recovery {
	case RecoveryInsert:
		return fmt.Sprintf("syntax error at %d: missing token, one of %v assumed", e.Span.Start, e.Expected)
	case RecoveryAbandoned:
		return fmt.Sprintf("syntax error at %d: unrecoverable, expected one of %v, found %v", e.Span.Start, e.Expected, e.Found)
	default:
		return fmt.Sprintf("syntax error at %d: expected one of %v, found %v", e.Span.Start, e.Expected, e.Found)
	}
}

// Tree is the output of a parse: a root NodeRef plus the accumulated
// errors.
type Tree struct {
	Root   ref.NodeRef
	Errors []SyntaxError
}
