// Package analyzer implements the demand-driven, lazily-validated attribute
// graph layered on top of a doc.Document (spec.md §4.G-4.I): the Analyzer
// itself, the Attribute/Slot types a grammar's semantics structs are built
// from, and the Task manager that arbitrates concurrent access to it.
package analyzer

import (
	"sync"
	"time"

	"github.com/dekarrin/sturgeon/aerr"
	"github.com/dekarrin/sturgeon/arena"
	"github.com/dekarrin/sturgeon/buffer"
	"github.com/dekarrin/sturgeon/doc"
	"github.com/dekarrin/sturgeon/ref"
)

// SemanticsAccessor is implemented by a grammar's per-node semantics struct
// so the Analyzer's scope-driven invalidation (spec.md §4.H, I6) can reach
// a node's scoped attributes without knowing the struct's layout. Only
// scope-root nodes (parse.RuleDef.ScopeRoot) are ever asked for these:
// I6 invalidates scoped attributes directly and leaves every other
// attribute to revalidate lazily through the dependency graph.
type SemanticsAccessor interface {
	ScopedAttributes() []Invalidatable
}

// docEntry is the Analyzer's bookkeeping for one Document: its class index
// plus whatever else the Analyzer layers on top without the Document itself
// needing to know about it.
type docEntry struct {
	doc     *doc.Document
	classes *classIndex
}

// Analyzer is the top-level coordinator described by spec.md §4.G: an
// ordered collection of documents, their class indices, the event table,
// Analyzer-wide common state, and the task manager that arbitrates access
// to all of it.
type Analyzer struct {
	cfg Config

	mu        sync.RWMutex
	documents map[arena.Id]*docEntry

	verMu sync.Mutex
	ver   uint64

	tasks  *TaskManager
	common *CommonFeature
	events *eventTable
}

// NewAnalyzer constructs an empty Analyzer. cfg.Doc supplies the grammar
// every document added through it will be parsed with.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{
		cfg:       cfg,
		documents: map[arena.Id]*docEntry{},
		tasks:     NewTaskManager(),
		common:    newCommonFeature(),
		events:    newEventTable(),
	}
}

// Analyze requests an Analysis task (spec.md §4.I).
func (az *Analyzer) Analyze(priority int) (*Task, error) {
	t, err := az.tasks.Analyze(priority)
	if err != nil {
		return nil, err
	}
	t.az = az
	return t, nil
}

// Mutate requests a Mutation task (spec.md §4.I).
func (az *Analyzer) Mutate(priority int) (*Task, error) {
	t, err := az.tasks.Mutate(priority)
	if err != nil {
		return nil, err
	}
	t.az = az
	return t, nil
}

// Exclusive requests an Exclusive task (spec.md §4.I).
func (az *Analyzer) Exclusive(priority int) (*Task, error) {
	t, err := az.tasks.Exclusive(priority)
	if err != nil {
		return nil, err
	}
	t.az = az
	return t, nil
}

// SetAccessLevel mass-interrupts pending and active tasks below priority.
func (az *Analyzer) SetAccessLevel(priority int) {
	az.tasks.SetAccessLevel(priority)
}

// Common returns the Analyzer-wide feature shared by every document's
// computations.
func (az *Analyzer) Common() *CommonFeature { return az.common }

func (az *Analyzer) version() uint64 {
	az.verMu.Lock()
	defer az.verMu.Unlock()
	return az.ver
}

func (az *Analyzer) bumpVersion() {
	az.verMu.Lock()
	az.ver++
	az.verMu.Unlock()
}

// unwrapAbnormal applies aerr.UnwrapAbnormal at the given Config's debug
// setting: it panics on an abnormal error (spec.md §7, Q3) and returns
// everything else — including a normal ErrTimeout in release mode —
// unchanged. Called at the library's external boundaries rather than at
// every internal return site, matching §7's "a single taxonomy... surfaced
// through a discriminated result type; abnormal kinds are separable via a
// helper that returns normal kinds to the caller and panics on abnormal
// ones."
func (az *Analyzer) unwrapAbnormal(err error) error {
	return aerr.UnwrapAbnormal(err, az.cfg.Debug)
}

// externalCtx builds a Ctx for an external Snapshot call: no node, no
// current computation, deadline bounded by the configured timeout.
func (az *Analyzer) externalCtx(task *Task) *Ctx {
	return &Ctx{az: az, task: task, deadline: time.Now().Add(az.cfg.timeout())}
}

func (az *Analyzer) lookupEntry(id arena.Id) (*docEntry, bool) {
	az.mu.RLock()
	defer az.mu.RUnlock()
	e, ok := az.documents[id]
	return e, ok
}

// lookupDocument implements Ctx.ReadDoc.
func (az *Analyzer) lookupDocument(id arena.Id) (*doc.Document, error) {
	e, ok := az.lookupEntry(id)
	if !ok {
		return nil, aerr.New("document not found", aerr.ErrMissingDocument)
	}
	return e.doc, nil
}

// snapshotClassDep implements Ctx.ReadClass: a value snapshot plus the
// dependency record a computing attribute should keep to invalidate on
// future membership changes.
func (az *Analyzer) snapshotClassDep(docID arena.Id, class string) (Shared[NodeSet], depRecord, error) {
	e, ok := az.lookupEntry(docID)
	if !ok {
		return Shared[NodeSet]{}, depRecord{}, aerr.New("document not found", aerr.ErrMissingDocument)
	}
	set, ver := e.classes.snapshot(class)
	dep := classDep{idx: e.classes, class: class}
	return NewShared(set), depRecord{dep: dep, seenAt: ver}, nil
}

// subscribeEvent implements Ctx.Subscribe.
func (az *Analyzer) subscribeEvent(eventID int, docID arena.Id, target Invalidatable) {
	az.events.subscribe(eventID, docID, target)
}

// Semantics returns the semantics value bound to n in d, constructing and
// binding it via construct on first access (spec.md §4.G: "bound lazily...
// nil until first attribute read"). The grammar-side construct typically
// builds a per-node struct of *Attribute[T]/*Slot[T] fields implementing
// SemanticsAccessor.
func (az *Analyzer) Semantics(d *doc.Document, n ref.NodeRef, construct func() any) any {
	if v, ok := d.Semantics(n); ok {
		return v
	}
	v := construct()
	d.SetSemantics(n, v)
	return v
}

// TriggerEvent fires eventID for doc's subscribers. Requires a Mutation or
// Exclusive task. The Analyzer's own DocUpdated announcement after a write
// goes straight to the event table from onDocEdit, not through this method.
func (t *Task) TriggerEvent(docID arena.Id, eventID int) error {
	if t.kind != KindMutation && t.kind != KindExclusive {
		return t.az.unwrapAbnormal(aerr.New("triggering an event requires a mutation or exclusive task", aerr.ErrInvariant))
	}
	t.az.events.trigger(eventID, docID)
	return nil
}

// SnapshotClass returns a document's current class membership snapshot and
// its version (spec.md §6, `snapshot_class`). Valid from any task kind.
func (t *Task) SnapshotClass(docID arena.Id, class string) (uint64, Shared[NodeSet], error) {
	e, ok := t.az.lookupEntry(docID)
	if !ok {
		return 0, Shared[NodeSet]{}, aerr.New("document not found", aerr.ErrMissingDocument)
	}
	set, ver := e.classes.snapshot(class)
	return ver, NewShared(set), nil
}

// Common returns the Analyzer-wide feature.
func (t *Task) Common() *CommonFeature { return t.az.common }

// AddMutableDoc creates a mutable document from text and returns its id.
// Requires a Mutation or Exclusive task.
func (t *Task) AddMutableDoc(text string) (arena.Id, error) {
	return t.addDoc(text, true)
}

// AddImmutableDoc creates an immutable document from text and returns its
// id. Requires a Mutation or Exclusive task.
func (t *Task) AddImmutableDoc(text string) (arena.Id, error) {
	return t.addDoc(text, false)
}

func (t *Task) addDoc(text string, mutable bool) (arena.Id, error) {
	if t.kind != KindMutation && t.kind != KindExclusive {
		return arena.Id{}, t.az.unwrapAbnormal(aerr.New("adding a document requires a mutation or exclusive task", aerr.ErrInvariant))
	}
	var d *doc.Document
	if mutable {
		d = doc.NewMutable(text, t.az.cfg.Doc)
	} else {
		d = doc.NewImmutable(text, t.az.cfg.Doc)
	}

	entry := &docEntry{doc: d, classes: newClassIndex(t.az.cfg.Classify)}
	id := d.Id()

	t.az.mu.Lock()
	t.az.documents[id] = entry
	t.az.mu.Unlock()

	if mutable {
		d.OnEdit(func(edited *doc.Document) { t.az.onDocEdit(id, edited) })
	}

	entry.reclassifyAll(d)
	return id, nil
}

// reclassifyAll runs the classifier over every live node, used once after a
// document is first built (after each edit, onDocEdit forgets removed nodes
// and reclassifies the live ones).
func (e *docEntry) reclassifyAll(d *doc.Document) {
	d.TraverseTree(doc.Visitor{EnterNode: func(n ref.NodeRef) bool {
		e.classes.reclassify(n, d)
		return true
	}})
}

// RemoveDoc deletes a document from the Analyzer. Requires a Mutation or
// Exclusive task.
func (t *Task) RemoveDoc(id arena.Id) error {
	if t.kind != KindMutation && t.kind != KindExclusive {
		return t.az.unwrapAbnormal(aerr.New("removing a document requires a mutation or exclusive task", aerr.ErrInvariant))
	}
	if err := t.az.tasks.AcquireDocMutation(t, id); err != nil {
		return err
	}
	defer t.az.tasks.ReleaseDocMutation(id)
	t.az.mu.Lock()
	_, ok := t.az.documents[id]
	if ok {
		delete(t.az.documents, id)
	}
	t.az.mu.Unlock()
	if !ok {
		return aerr.New("document not found", aerr.ErrMissingDocument)
	}
	return nil
}

// ContainsDoc reports whether id names a document currently held.
func (t *Task) ContainsDoc(id arena.Id) bool {
	_, ok := t.az.lookupEntry(id)
	return ok
}

// ReadDoc takes a document read guard, blocking mutation of that document
// (but never analysis) until Release is called on the returned guard.
func (t *Task) ReadDoc(id arena.Id) (DocGuard, *doc.Document, error) {
	d, err := t.az.lookupDocument(id)
	if err != nil {
		return DocGuard{}, nil, err
	}
	return t.az.tasks.AcquireReadGuard(id), d, nil
}

// WriteToDoc applies an edit to a document. Requires a Mutation or
// Exclusive task, and serializes against other mutations of the same
// document.
func (t *Task) WriteToDoc(id arena.Id, span buffer.Span, text string) error {
	if t.kind != KindMutation && t.kind != KindExclusive {
		return t.az.unwrapAbnormal(aerr.New("writing to a document requires a mutation or exclusive task", aerr.ErrInvariant))
	}
	e, ok := t.az.lookupEntry(id)
	if !ok {
		return aerr.New("document not found", aerr.ErrMissingDocument)
	}

	if err := t.az.tasks.AcquireDocMutation(t, id); err != nil {
		return err
	}
	defer t.az.tasks.ReleaseDocMutation(id)

	return e.doc.Write(span, text)
}

// onDocEdit is wired as a Document's OnEdit hook implementing the I6 scope
// invariant: it bumps the Analyzer version, forgets removed nodes and
// reclassifies every live node (the class index only changes where a
// node's classes did), but directly invalidates only the scoped
// attributes of scope roots whose subtree intersects the edit span. Every
// other attribute is left alone to revalidate lazily through the
// dependency graph on its next read (spec.md §4.H steps 1-2, I6, P6).
func (az *Analyzer) onDocEdit(id arena.Id, d *doc.Document) {
	e, ok := az.lookupEntry(id)
	if !ok {
		return
	}
	az.bumpVersion()

	_, editSpan, removed := d.LastEdit()
	for _, n := range removed {
		e.classes.forget(n)
	}

	d.TraverseTree(doc.Visitor{EnterNode: func(n ref.NodeRef) bool {
		e.classes.reclassify(n, d)
		start, length, ok := d.SpanOfNode(n)
		if !ok {
			return true
		}
		nodeSpan := buffer.Span{Start: start, End: start + length}
		if !spansOverlap(nodeSpan, editSpan) {
			return true
		}
		if d.IsScopeRoot(n) {
			if sem, ok := d.Semantics(n); ok {
				if acc, ok := sem.(SemanticsAccessor); ok {
					for _, attr := range acc.ScopedAttributes() {
						attr.invalidate()
					}
				}
			}
		}
		return true
	}})

	az.events.trigger(DocUpdated, id)
}

func spansOverlap(a, b buffer.Span) bool {
	return a.Start < b.End && b.Start < a.End
}
