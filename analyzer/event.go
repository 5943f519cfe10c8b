package analyzer

import (
	"sync"

	"github.com/dekarrin/sturgeon/arena"
)

// DocUpdated is the built-in event id fired whenever a mutation task
// successfully applies a write to a document (spec.md §4.G).
const DocUpdated int = 0

// eventTable holds attribute subscriptions per (event id, document).
// Triggering an event invalidates every subscriber directly, rather than
// going through the dependency-version mechanism used for attribute/slot/
// class reads — a subscription is a push, not a pull.
type eventTable struct {
	mu   sync.Mutex
	subs map[int]map[arena.Id][]Invalidatable
}

func newEventTable() *eventTable {
	return &eventTable{subs: map[int]map[arena.Id][]Invalidatable{}}
}

func (t *eventTable) subscribe(eventID int, docID arena.Id, target Invalidatable) {
	t.mu.Lock()
	defer t.mu.Unlock()
	byDoc, ok := t.subs[eventID]
	if !ok {
		byDoc = map[arena.Id][]Invalidatable{}
		t.subs[eventID] = byDoc
	}
	byDoc[docID] = append(byDoc[docID], target)
}

func (t *eventTable) trigger(eventID int, docID arena.Id) {
	t.mu.Lock()
	targets := append([]Invalidatable(nil), t.subs[eventID][docID]...)
	t.mu.Unlock()

	for _, tgt := range targets {
		tgt.invalidate()
	}
}
