package analyzer

import (
	"sync"
	"sync/atomic"

	"github.com/dekarrin/sturgeon/aerr"
	"github.com/dekarrin/sturgeon/arena"
)

// Kind distinguishes the three task flavors of spec.md §4.I.
type Kind int

const (
	KindAnalysis Kind = iota
	KindMutation
	KindExclusive
)

// Task is an RAII-style guard: obtaining one via TaskManager grants the
// access level its Kind describes until Release is called. A Task also
// carries a cooperative-cancellation trigger, checked by Ctx.Proceed and by
// the task's own blocking wait loop.
type Task struct {
	mgr      *TaskManager
	az       *Analyzer // set by Analyzer.Analyze/Mutate/Exclusive; nil for a bare TaskManager in tests
	kind     Kind
	priority int
	trig     atomic.Bool
}

// Priority returns the priority the task was requested at.
func (t *Task) Priority() int { return t.priority }

func (t *Task) triggered() bool { return t.trig.Load() }

// Trigger asks the task to relinquish cooperatively; it does not force
// release, it only flips the flag Ctx.Proceed and the manager's wait loops
// observe.
func (t *Task) Trigger() { t.trig.Store(true) }

// Release ends the task's grant, waking any other task waiting on the
// resource it held.
func (t *Task) Release() { t.mgr.release(t) }

// TaskManager arbitrates Analysis/Mutation/Exclusive access across an
// Analyzer's documents, per spec.md §4.I's conflict table and priority
// preemption.
type TaskManager struct {
	mu   sync.Mutex
	cond *sync.Cond

	threshold int // SetAccessLevel floor; priorities below this are refused/interrupted

	exclusiveTask  *Task // non-nil while an Exclusive task holds the Analyzer
	analysisActive map[*Task]bool
	mutationByDoc  map[arena.Id]*Task
	readGuards     map[arena.Id]int
}

// NewTaskManager returns an empty TaskManager.
func NewTaskManager() *TaskManager {
	m := &TaskManager{
		analysisActive: map[*Task]bool{},
		mutationByDoc:  map[arena.Id]*Task{},
		readGuards:     map[arena.Id]int{},
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Analyze requests an Analysis task at the given priority: many may be
// active concurrently, but none may proceed while an Exclusive task holds
// the Analyzer.
func (m *TaskManager) Analyze(priority int) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if priority < m.threshold {
		return nil, aerr.New("analysis task refused below current access level", aerr.ErrInterrupted)
	}
	for m.exclusiveTask != nil {
		if priority < m.threshold {
			return nil, aerr.New("analysis task refused below current access level", aerr.ErrInterrupted)
		}
		m.cond.Wait()
	}
	t := &Task{mgr: m, kind: KindAnalysis, priority: priority}
	m.analysisActive[t] = true
	return t, nil
}

// Mutate requests a Mutation task: many may be held concurrently (across
// distinct documents or the same one), but none while an Exclusive task
// holds the Analyzer. Per-document serialization is a separate, finer-grained
// acquisition made at the point of use — see AcquireDocMutation — since which
// document(s) a Mutation task will touch isn't known until it calls one of
// the document-mutating Task methods.
func (m *TaskManager) Mutate(priority int) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if priority < m.threshold {
		return nil, aerr.New("mutation task refused below current access level", aerr.ErrInterrupted)
	}
	for m.exclusiveTask != nil {
		if priority < m.threshold {
			return nil, aerr.New("mutation task refused below current access level", aerr.ErrInterrupted)
		}
		m.cond.Wait()
	}
	return &Task{mgr: m, kind: KindMutation, priority: priority}, nil
}

// AcquireDocMutation serializes access to one document among Mutation
// tasks, and blocks while any read guard on it is outstanding. A
// higher-priority waiter triggers the current holder so it can relinquish
// cooperatively.
func (m *TaskManager) AcquireDocMutation(t *Task, docID arena.Id) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.readGuards[docID] > 0 || m.mutationByDoc[docID] != nil {
		if holder, ok := m.mutationByDoc[docID]; ok && holder.priority < t.priority {
			holder.Trigger()
		}
		if t.priority < m.threshold || t.triggered() {
			return aerr.New("mutation on document refused below current access level or interrupted", aerr.ErrInterrupted)
		}
		m.cond.Wait()
	}
	m.mutationByDoc[docID] = t
	return nil
}

// ReleaseDocMutation ends a per-document mutation acquisition made by
// AcquireDocMutation.
func (m *TaskManager) ReleaseDocMutation(docID arena.Id) {
	m.mu.Lock()
	delete(m.mutationByDoc, docID)
	m.cond.Broadcast()
	m.mu.Unlock()
}

// Exclusive requests sole access to the Analyzer: no Analysis or Mutation
// task may be active concurrently with it.
func (m *TaskManager) Exclusive(priority int) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if priority < m.threshold {
		return nil, aerr.New("exclusive task refused below current access level", aerr.ErrInterrupted)
	}
	for m.exclusiveTask != nil || len(m.analysisActive) > 0 || len(m.mutationByDoc) > 0 {
		for _, holder := range m.mutationByDoc {
			if holder.priority < priority {
				holder.Trigger()
			}
		}
		for holder := range m.analysisActive {
			if holder.priority < priority {
				holder.Trigger()
			}
		}
		if priority < m.threshold {
			return nil, aerr.New("exclusive task refused below current access level", aerr.ErrInterrupted)
		}
		m.cond.Wait()
	}
	t := &Task{mgr: m, kind: KindExclusive, priority: priority}
	m.exclusiveTask = t
	return t, nil
}

func (m *TaskManager) release(t *Task) {
	m.mu.Lock()
	switch t.kind {
	case KindAnalysis:
		delete(m.analysisActive, t)
	case KindMutation:
		// Per-document mutation holds are released explicitly via
		// ReleaseDocMutation; nothing keyed on the task itself to clean up
		// here.
	case KindExclusive:
		if m.exclusiveTask == t {
			m.exclusiveTask = nil
		}
	}
	m.cond.Broadcast()
	m.mu.Unlock()
}

// DocGuard is a scoped read acquisition on one document: it blocks
// Mutation (and Exclusive, transitively) on that document until released,
// but never blocks Analysis.
type DocGuard struct {
	mgr   *TaskManager
	docID arena.Id
}

// Release ends the guard, waking anything waiting to mutate the document.
func (g DocGuard) Release() {
	g.mgr.mu.Lock()
	if g.mgr.readGuards[g.docID] > 0 {
		g.mgr.readGuards[g.docID]--
	}
	g.mgr.cond.Broadcast()
	g.mgr.mu.Unlock()
}

// AcquireReadGuard takes a document read guard, usable from any task kind.
func (m *TaskManager) AcquireReadGuard(docID arena.Id) DocGuard {
	m.mu.Lock()
	m.readGuards[docID]++
	m.mu.Unlock()
	return DocGuard{mgr: m, docID: docID}
}

// SetAccessLevel raises or lowers the priority floor: pending requests below
// threshold are refused at their next admission check, and every active
// task below it — Mutation holder, Analysis task, or the Exclusive task — is
// sent a Trigger so it can relinquish cooperatively (spec.md §4.I,
// "set_access_level(threshold) to mass-interrupt pending and active tasks
// below a priority").
func (m *TaskManager) SetAccessLevel(threshold int) {
	m.mu.Lock()
	m.threshold = threshold
	for _, holder := range m.mutationByDoc {
		if holder.priority < threshold {
			holder.Trigger()
		}
	}
	for holder := range m.analysisActive {
		if holder.priority < threshold {
			holder.Trigger()
		}
	}
	if m.exclusiveTask != nil && m.exclusiveTask.priority < threshold {
		m.exclusiveTask.Trigger()
	}
	m.cond.Broadcast()
	m.mu.Unlock()
}
