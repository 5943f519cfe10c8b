package analyzer

import (
	"hash/fnv"
	"time"

	"github.com/dekarrin/sturgeon/doc"
)

// HasherFunc computes a 64-bit digest. Config.Hasher holds one; no
// dependency-set or class-index code in the Analyzer calls it.
type HasherFunc func(data []byte) uint64

// DefaultHasher is 64-bit FNV-1a, the same hash family as the lookback hash
// of parse.Cache.
func DefaultHasher(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

// Config configures an Analyzer. It is constructed directly by the
// embedding program; there is no file or environment-variable loading
// surface, per spec.md's Non-goals for this library.
type Config struct {
	// Doc supplies the grammar-derivation contracts (DFA, grammar, cache
	// capacity) every document added through this Analyzer is built with.
	// One Analyzer speaks one grammar; distinct languages want distinct
	// Analyzers (spec.md §6, "Grammar surface").
	Doc doc.Config

	// Classify is the grammar's pure classifier, run after every accepted
	// edit to maintain each document's class index (spec.md §4.H, "Class
	// index maintenance"). Nil disables classification; SnapshotClass will
	// always report an empty set.
	Classify Classifier

	// Timeout bounds a single attribute's validation chain (spec.md §4.H
	// cycle/timeout detection). Zero selects DefaultTimeout.
	Timeout time.Duration

	// SingleDocument marks an Analyzer that holds one document. The
	// Analyzer and its task manager do not read it; setting it changes no
	// behavior.
	SingleDocument bool

	// Hasher selects a HasherFunc; nil selects DefaultHasher. No
	// dependency-set or class-index code hashes through it, so setting it
	// changes no behavior.
	Hasher HasherFunc

	// Debug makes a timeout an abnormal error (see aerr.IsAbnormal) instead
	// of a normal one, so it panics at the library's boundaries. Invariant
	// violations and uninitialized-semantics errors are abnormal, and
	// panic, whether or not Debug is set.
	Debug bool
}

// DefaultTimeout is used when Config.Timeout is zero.
const DefaultTimeout = 5 * time.Second

func (c Config) hasher() HasherFunc {
	if c.Hasher != nil {
		return c.Hasher
	}
	return DefaultHasher
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
