package analyzer

import (
	"sync"

	"github.com/dekarrin/sturgeon/doc"
	"github.com/dekarrin/sturgeon/internal/util"
	"github.com/dekarrin/sturgeon/ref"
)

// NodeSet is an immutable snapshot of nodes sharing a class value.
type NodeSet = util.Set[ref.NodeRef]

// Classifier is the grammar-supplied pure function mapping a node to the
// set of class values it currently belongs to (spec.md §4.H, "Class index
// maintenance"). It must not mutate the document or read attributes.
type Classifier func(n ref.NodeRef, d *doc.Document) []string

// classIndex holds one document's class -> node-set map plus a per-class
// version counter so dependents can early-out when nothing they track
// changed.
type classIndex struct {
	mu       sync.RWMutex
	byClass  map[string]NodeSet
	ver      map[string]uint64
	nodeCls  map[ref.NodeRef][]string // last classification recorded per node, for diffing
	classify Classifier
}

func newClassIndex(classify Classifier) *classIndex {
	return &classIndex{
		byClass:  map[string]NodeSet{},
		ver:      map[string]uint64{},
		nodeCls:  map[ref.NodeRef][]string{},
		classify: classify,
	}
}

// snapshot returns a copy of the node set for class and its current
// version.
func (c *classIndex) snapshot(class string) (NodeSet, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	src := c.byClass[class]
	cp := src.Copy()
	return cp, c.ver[class]
}

func (c *classIndex) version(class string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ver[class]
}

// reclassify re-runs the classifier for n and updates every class set that
// changed membership, bumping only the versions of classes actually
// touched.
func (c *classIndex) reclassify(n ref.NodeRef, d *doc.Document) {
	if c.classify == nil {
		return
	}
	newClasses := c.classify(n, d)

	c.mu.Lock()
	defer c.mu.Unlock()

	oldClasses := c.nodeCls[n]
	oldSet := map[string]bool{}
	for _, cl := range oldClasses {
		oldSet[cl] = true
	}
	newSet := map[string]bool{}
	for _, cl := range newClasses {
		newSet[cl] = true
	}

	for cl := range oldSet {
		if !newSet[cl] {
			c.removeMember(cl, n)
		}
	}
	for cl := range newSet {
		if !oldSet[cl] {
			c.addMember(cl, n)
		}
	}
	if len(newClasses) == 0 {
		delete(c.nodeCls, n)
	} else {
		c.nodeCls[n] = newClasses
	}
}

// forget drops a removed node from every class it belonged to, used when a
// node is orphaned by an edit.
func (c *classIndex) forget(n ref.NodeRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cl := range c.nodeCls[n] {
		c.removeMember(cl, n)
	}
	delete(c.nodeCls, n)
}

// removeMember/addMember assume c.mu is already held.
func (c *classIndex) removeMember(class string, n ref.NodeRef) {
	set := c.byClass[class]
	if set == nil || !set.Has(n) {
		return
	}
	set.Remove(n)
	c.ver[class]++
}

func (c *classIndex) addMember(class string, n ref.NodeRef) {
	set := c.byClass[class]
	if set == nil {
		set = util.NewSet[ref.NodeRef]()
		c.byClass[class] = set
	}
	set.Add(n)
	c.ver[class]++
}

// classDep is the dependency handle returned to Ctx.ReadClass so an
// attribute that read a class snapshot gets invalidated when that class's
// membership changes.
type classDep struct {
	idx   *classIndex
	class string
}

func (d classDep) refresh(*Ctx) error { return nil }
func (d classDep) version() uint64    { return d.idx.version(d.class) }
