package doc

import (
	"github.com/dekarrin/sturgeon/lex"
	"github.com/dekarrin/sturgeon/parse"
)

// VoidRoot is the single node kind a void grammar produces: a flat root
// whose children are every token in the stream, in order. Used for
// documents that only need lexing (plain text, logs, config fragments)
// without a real syntax tree.
const VoidRoot parse.NodeKind = 0

// NewVoidGrammar builds a Grammar with exactly one rule, VoidRoot, that
// consumes every token of the stream as a direct child without attempting
// to group or classify them. Pair it with a Dfa that covers the token set
// you care about; anything it doesn't recognize still arrives as a
// Mismatch token under the root rather than failing the parse.
func NewVoidGrammar() *parse.Grammar {
	root := &parse.RuleDef{
		Kind:     VoidRoot,
		Leftmost: map[lex.Kind]bool{}, // never consulted: root is always entered directly
		HandWritten: func(s *parse.Session) error {
			for s.Peek() != lex.EOI {
				s.Advance()
			}
			return nil
		},
	}
	return &parse.Grammar{
		Root:  VoidRoot,
		Rules: map[parse.NodeKind]*parse.RuleDef{VoidRoot: root},
	}
}

// NewVoidDocument constructs a mutable Document over initialText using dfa
// for lexing and a flat void grammar for its syntax tree — the lexical-only
// configuration for documents that have no need of real parsing.
func NewVoidDocument(initialText string, dfa lex.Dfa, cacheCapacity int) *Document {
	return NewMutable(initialText, Config{
		Dfa:           dfa,
		Grammar:       NewVoidGrammar(),
		CacheCapacity: cacheCapacity,
	})
}
