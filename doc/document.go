// Package doc composes buffer, lex, and parse into the Document facade:
// the unit of source text, tokens, and syntax tree that an Analyzer holds
// and that Attribute computations read from. Two flavors are exposed from
// the same underlying struct: mutable documents accept Write, immutable
// documents are built once and reject it.
package doc

import (
	"sync"

	"github.com/dekarrin/sturgeon/arena"
	"github.com/dekarrin/sturgeon/buffer"
	"github.com/dekarrin/sturgeon/lex"
	"github.com/dekarrin/sturgeon/parse"
	"github.com/dekarrin/sturgeon/ref"
)

// nodeRecord is the arena-owned representation of one syntax node.
type nodeRecord struct {
	kind      parse.NodeKind
	start     int
	length    int
	parent    ref.NodeRef
	children  []ref.PolyRef
	captures  map[string]any
	semantics any // bound lazily by analyzer.Analyzer; nil until first attribute read
}

// Config supplies the grammar-derivation contracts a Document needs: the
// compiled Dfa for lexing and the Grammar for parsing. Both are opaque to
// this package beyond their documented interfaces (spec.md §6).
type Config struct {
	Dfa           lex.Dfa
	Grammar       *parse.Grammar
	CacheCapacity int
}

// Document is the mutable-or-immutable facade over a buffer, its token
// stream, and its syntax tree.
type Document struct {
	mu sync.RWMutex

	id      arena.Id
	mutable bool

	buf     *buffer.Buffer
	tokens  *arena.Arena[lex.Token]
	order   []ref.TokenRef // ordered by position; rebuilt on every edit
	nodes   *arena.Arena[*nodeRecord]
	root    ref.NodeRef
	scanner *lex.Scanner
	engine  *parse.Engine
	errs    []parse.SyntaxError

	// lastEdit records the most recent accepted edit's touched node kinds
	// and character span, consulted by analyzer.Analyzer for scope
	// invalidation (spec.md §4.H step 1).
	lastEditKinds   map[parse.NodeKind]bool
	lastEditSpan    buffer.Span
	lastEditRemoved []ref.NodeRef

	// onEdit, if set, is called synchronously after an edit is spliced in,
	// before Write returns. The analyzer package wires this in when a
	// Document is added to an Analyzer.
	onEdit func(d *Document)
}

// NewMutable constructs a mutable Document over initialText using cfg.
func NewMutable(initialText string, cfg Config) *Document {
	return newDocument(initialText, cfg, true)
}

// NewImmutable constructs a Document built once from initialText. Write
// always fails on the result.
func NewImmutable(initialText string, cfg Config) *Document {
	return newDocument(initialText, cfg, false)
}

func newDocument(initialText string, cfg Config, mutable bool) *Document {
	d := &Document{
		id:      arena.NewId(),
		mutable: mutable,
		buf:     buffer.NewMutable(initialText),
		tokens:  arena.New[lex.Token](),
		nodes:   arena.New[*nodeRecord](),
		scanner: lex.NewScanner(cfg.Dfa),
		engine:  parse.NewEngine(cfg.Grammar, cfg.CacheCapacity),
	}
	d.fullParse()
	return d
}

func (d *Document) fullParse() {
	src := []rune(mustSubstring(d.buf, buffer.Span{Start: 0, End: d.buf.Len()}))
	toks := d.scanner.ScanAll(src)

	d.tokens = arena.New[lex.Token]()
	d.order = make([]ref.TokenRef, len(toks))
	for i, t := range toks {
		d.order[i] = ref.TokenRef{Doc: d.id, Entry: d.tokens.Insert(t)}
	}

	d.nodes = arena.New[*nodeRecord]()
	tree := d.engine.Parse(parse.NewTokenSource(toks), d)
	d.root = tree.Root
	d.errs = tree.Errors
}

func mustSubstring(b *buffer.Buffer, span buffer.Span) string {
	s, err := b.Substring(span)
	if err != nil {
		return ""
	}
	return s
}

// Id returns the Document's process-wide unique identifier.
func (d *Document) Id() arena.Id {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.id
}

// SetName attaches a display name to the Document's Id.
func (d *Document) SetName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.id = d.id.Named(name)
}

// RootNodeRef returns the syntax tree's root node.
func (d *Document) RootNodeRef() ref.NodeRef {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root
}

// Errors returns the syntax errors accumulated by the most recent parse
// (full or incremental). Lex/parse are infallible at the API boundary —
// this is the only place syntax trouble surfaces (spec.md §7).
func (d *Document) Errors() []parse.SyntaxError {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]parse.SyntaxError, len(d.errs))
	copy(out, d.errs)
	return out
}

// Substring returns the text in span.
func (d *Document) Substring(span buffer.Span) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.Substring(span)
}

// Chunks returns line-bounded chunks of text in span.
func (d *Document) Chunks(span buffer.Span) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.Chunks(span)
}

// Lines returns the number of lines in the buffer.
func (d *Document) Lines() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.LineCount()
}

// Len returns the buffer's character length.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.Len()
}

// EndOfInput implements ref.Resolver.
func (d *Document) EndOfInput() int {
	return d.buf.Len()
}

// LastEdit returns the node kinds newly created, the character span
// affected, and the nodes removed by the most recently accepted Write,
// consulted by analyzer.Analyzer to scope invalidation and class
// reclassification (spec.md §4.H step 1 / I6). Undefined (zero value) before
// the first Write.
func (d *Document) LastEdit() (touchedKinds map[parse.NodeKind]bool, span buffer.Span, removed []ref.NodeRef) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[parse.NodeKind]bool, len(d.lastEditKinds))
	for k, v := range d.lastEditKinds {
		out[k] = v
	}
	rm := make([]ref.NodeRef, len(d.lastEditRemoved))
	copy(rm, d.lastEditRemoved)
	return out, d.lastEditSpan, rm
}

// Semantics returns the semantics value bound to n by analyzer.Analyzer, if
// any. Document itself never inspects or populates it.
func (d *Document) Semantics(n ref.NodeRef) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	nd, ok := d.nodes.Get(n.Entry)
	if !ok {
		return nil, false
	}
	return nd.semantics, nd.semantics != nil
}

// SetSemantics binds v as n's semantics value. Used by analyzer.Analyzer the
// first time a node's attributes are read.
func (d *Document) SetSemantics(n ref.NodeRef, v any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if nd, ok := d.nodes.Get(n.Entry); ok {
		nd.semantics = v
	}
}

// OnEdit registers a hook called synchronously after each accepted Write,
// before Write returns. Only one hook may be registered; a second call
// replaces the first. Used by analyzer.Analyzer to drive scope-driven
// invalidation when a Document is added to it.
func (d *Document) OnEdit(hook func(d *Document)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onEdit = hook
}
