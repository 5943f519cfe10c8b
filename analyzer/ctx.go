package analyzer

import (
	"time"

	"github.com/dekarrin/sturgeon/aerr"
	"github.com/dekarrin/sturgeon/arena"
	"github.com/dekarrin/sturgeon/doc"
	"github.com/dekarrin/sturgeon/ref"
)

// Ctx is handed to an attribute's compute function (spec.md §4.H). It is
// the only way a computation touches the Analyzer: reading other
// attributes/slots, reading a class snapshot, subscribing to events,
// reaching the Analyzer-wide common feature, and checking for cooperative
// cancellation.
type Ctx struct {
	az       *Analyzer
	task     *Task
	node     ref.NodeRef
	docID    arena.Id
	current  computing // the Attribute currently computing, nil for an external Snapshot
	deadline time.Time
}

// NodeRef returns the node this computation belongs to.
func (c *Ctx) NodeRef() ref.NodeRef { return c.node }

// ReadDoc returns shared, read-only access to the document with the given
// id for the lifetime of the current validation.
func (c *Ctx) ReadDoc(id arena.Id) (*doc.Document, error) {
	return c.az.lookupDocument(id)
}

// ReadClass returns a snapshot of a class's node set, subscribing the
// current attribute (if any) to future changes in that class.
func (c *Ctx) ReadClass(class string) (Shared[NodeSet], error) {
	snap, dep, err := c.az.snapshotClassDep(c.docID, class)
	if err != nil {
		return Shared[NodeSet]{}, err
	}
	if c.current != nil {
		c.current.recordDep(dep)
	}
	return snap, nil
}

// Subscribe registers the current attribute as an observer of eventID,
// fired via Task.TriggerEvent. A no-op outside an attribute computation.
func (c *Ctx) Subscribe(eventID int) {
	if c.current == nil {
		return
	}
	c.az.subscribeEvent(eventID, c.docID, c.current)
}

// Common returns the Analyzer-wide feature shared across all documents.
func (c *Ctx) Common() *CommonFeature { return c.az.common }

// Proceed is a cooperative-cancellation checkpoint: computations that may
// run long should call it periodically and propagate its error unchanged.
func (c *Ctx) Proceed() error {
	if c.task != nil && c.task.triggered() {
		return aerr.New("task was interrupted during attribute evaluation", aerr.ErrInterrupted)
	}
	if !c.deadline.IsZero() && time.Now().After(c.deadline) {
		return aerr.New("attribute evaluation exceeded its deadline", aerr.ErrTimeout)
	}
	return nil
}

// withComputing returns a copy of c whose current computation is cm, scoped
// to the node/document cm owns — so ctx.NodeRef/ReadDoc/ReadClass inside the
// compute call reflect cm's owner rather than whatever ctx happened to
// trigger the refresh (which may belong to a different attribute entirely).
func (c *Ctx) withComputing(cm computing, node ref.NodeRef, docID arena.Id) *Ctx {
	cp := *c
	cp.current = cm
	cp.node = node
	cp.docID = docID
	return &cp
}
