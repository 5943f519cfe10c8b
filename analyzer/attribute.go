package analyzer

import (
	"sync"
	"time"

	"github.com/dekarrin/sturgeon/aerr"
	"github.com/dekarrin/sturgeon/arena"
	"github.com/dekarrin/sturgeon/ref"
)

// evaluationPollInterval is how often refresh rechecks an in-flight
// computation it is waiting behind, before giving up at ctx's deadline.
const evaluationPollInterval = time.Millisecond

// Status is an attribute's position in the validation state machine
// described by spec.md §4.H.
type Status int32

const (
	StatusUnevaluated Status = iota
	StatusEvaluating
	StatusFresh
	StatusStale
	StatusInterrupted
)

// dependency is the type-erased handle an Attribute or Slot exposes so
// something that depends on it can ask "has your value changed since I
// last looked?" without knowing its value type.
type dependency interface {
	refresh(ctx *Ctx) error
	version() uint64
}

// depRecord pairs a dependency with the version of it this attribute last
// observed, so refresh can early-out when nothing it reads has changed.
type depRecord struct {
	dep    dependency
	seenAt uint64
}

// recorder is implemented by whatever is currently computing (an Attribute
// being refreshed), so a dependency it reads can register itself.
type recorder interface {
	recordDep(depRecord)
}

// Invalidatable is implemented by every Attribute[T] regardless of T, so the
// Analyzer's scope-driven invalidation (spec.md §4.H, I6) can walk a node's
// declared attributes without caring about their value types. A grammar's
// per-node semantics struct should expose its attributes through a method
// returning []Invalidatable.
type Invalidatable interface {
	invalidate()
}

// computing is the combined view Ctx needs of whatever attribute is
// currently being refreshed: it both records dependencies it reads and can
// be invalidated directly by an event subscription firing.
type computing interface {
	recorder
	Invalidatable
}

// Attribute is a lazily-computed, dependency-tracked value owned by one
// node. The grammar supplies compute and an equality predicate; the engine
// handles caching, early-out refresh, and cycle/timeout detection.
type Attribute[T any] struct {
	mu sync.Mutex

	status    Status
	value     T
	ver       uint64 // bumped only when value actually changes
	checkedAt uint64 // analyzer version this attribute was last validated against

	deps         []depRecord
	depsBuilding []depRecord // accumulated by recordDep while status == StatusEvaluating

	equal   func(a, b T) bool
	compute func(ctx *Ctx) (T, error)

	az    *Analyzer
	node  ref.NodeRef
	docID arena.Id
}

// NewAttribute constructs an Attribute owned by node in the document docID,
// whose value is produced by compute and compared across refreshes with
// equal. az may be nil for a standalone Attribute used outside any Analyzer
// (e.g. in a unit test), in which case Analyzer-version bookkeeping is
// skipped.
func NewAttribute[T any](az *Analyzer, node ref.NodeRef, docID arena.Id, equal func(a, b T) bool, compute func(ctx *Ctx) (T, error)) *Attribute[T] {
	return &Attribute[T]{az: az, node: node, docID: docID, equal: equal, compute: compute}
}

// Read is the in-computation counterpart of spec.md's `ctx.read(other_attr)`
// — Go's lack of method-level generics means the call is spelled
// `other.Read(ctx)` instead of `ctx.Read(other)`, but the contract is the
// same: refresh other, then record a dependency on it for the attribute
// currently computing (if any).
func (a *Attribute[T]) Read(ctx *Ctx) (T, error) {
	var zero T
	if err := a.refresh(ctx); err != nil {
		return zero, err
	}
	a.mu.Lock()
	v, ver := a.value, a.ver
	a.mu.Unlock()
	if ctx.current != nil {
		ctx.current.recordDep(depRecord{dep: a, seenAt: ver})
	}
	return v, nil
}

// Snapshot is the external (non-computation) entry point: refresh and
// return the current version and value without recording any dependency.
// A timeout or invariant violation surfacing here is unwrapped against the
// Analyzer's Config.Debug (spec.md §7, Q3): abnormal in debug mode panics
// so the author locates the cycle, normal in release returns as usual.
func (a *Attribute[T]) Snapshot(task *Task) (uint64, T, error) {
	var ctx *Ctx
	if a.az != nil {
		ctx = a.az.externalCtx(task)
	} else {
		ctx = &Ctx{task: task, deadline: time.Now().Add(DefaultTimeout)}
	}
	var zero T
	if err := a.refresh(ctx); err != nil {
		if a.az != nil {
			err = a.az.unwrapAbnormal(err)
		}
		return a.version(), zero, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ver, a.value, nil
}

// invalidate marks a fresh or unevaluated attribute stale. A cycle-free
// refresh will recompute it (or early-out if its own deps are unchanged)
// the next time it is read.
func (a *Attribute[T]) invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == StatusFresh || a.status == StatusUnevaluated {
		a.status = StatusStale
	}
}

func (a *Attribute[T]) version() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ver
}

func (a *Attribute[T]) recordDep(d depRecord) {
	a.depsBuilding = append(a.depsBuilding, d)
}

// refresh implements the validation protocol of spec.md §4.H steps 1-5.
func (a *Attribute[T]) refresh(ctx *Ctx) error {
	a.mu.Lock()

	for a.status == StatusEvaluating {
		if err := ctx.Proceed(); err != nil {
			a.mu.Unlock()
			return err
		}
		if !ctx.deadline.IsZero() && time.Now().After(ctx.deadline) {
			a.mu.Unlock()
			return aerr.New("attribute evaluation deadlocked waiting on an in-flight computation", aerr.ErrTimeout)
		}
		a.mu.Unlock()
		time.Sleep(evaluationPollInterval)
		a.mu.Lock()
	}

	az := a.az
	if a.status == StatusFresh && az != nil && a.checkedAt == az.version() {
		a.mu.Unlock()
		return nil
	}

	needCompute := a.status == StatusUnevaluated
	wasStale := a.status == StatusStale
	if wasStale {
		// a direct invalidate() (scope edit or event trigger) isn't
		// necessarily reflected by any recorded dependency's version, so it
		// forces recompute rather than going through the dependency early-out
		// below.
		needCompute = true
	}
	deps := a.deps
	a.status = StatusEvaluating
	a.mu.Unlock()

	if !needCompute {
		for _, dr := range deps {
			if err := dr.dep.refresh(ctx); err != nil {
				a.mu.Lock()
				a.status = StatusStale
				a.mu.Unlock()
				return err
			}
			if dr.dep.version() != dr.seenAt {
				needCompute = true
			}
		}
	}

	if err := ctx.Proceed(); err != nil {
		a.mu.Lock()
		a.status = StatusInterrupted
		a.mu.Unlock()
		return err
	}

	if !needCompute {
		a.mu.Lock()
		a.status = StatusFresh
		if az != nil {
			a.checkedAt = az.version()
		}
		a.mu.Unlock()
		return nil
	}

	childCtx := ctx.withComputing(a, a.node, a.docID)
	newVal, err := a.compute(childCtx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.status = StatusInterrupted
		a.depsBuilding = nil
		return err
	}

	firstRun := a.checkedAt == 0 && !wasStale
	if firstRun || !a.equal(a.value, newVal) {
		a.value = newVal
		a.ver++
	}
	a.deps = a.depsBuilding
	a.depsBuilding = nil
	a.status = StatusFresh
	if az != nil {
		a.checkedAt = az.version()
	}
	return nil
}
