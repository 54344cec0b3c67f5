// Package egraph: snapshot plumbing and whole-graph accessors.
package egraph

import (
	"sort"

	"github.com/katalvlaran/foresight/core"
)

// Classes returns the canonical class refs in id order.
// Complexity: O(C log C)
func (g *EGraph) Classes() []core.EClassRef {
	ids := make([]uint32, 0, len(g.classes))
	for id := range g.classes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]core.EClassRef, len(ids))
	for i, id := range ids {
		out[i] = core.NewEClassRef(id)
	}
	return out
}

// ClassCount returns the number of canonical classes.
func (g *EGraph) ClassCount() int { return len(g.classes) }

// NodeCount returns the total number of stored node shapes.
// Complexity: O(C)
func (g *EGraph) NodeCount() int {
	n := 0
	for _, c := range g.classes {
		n += len(c.shapes)
	}
	return n
}

// editor accumulates one atomic mutation into a fresh snapshot. The source
// graph's maps are copied shallowly up front; class records are cloned
// lazily the first time they are written (clone-on-write), so untouched
// classes stay shared between snapshots.
type editor struct {
	g     *EGraph
	owned map[uint32]bool // class ids cloned into this snapshot
}

// beginEdit opens a fresh snapshot seeded from g.
// Complexity: O(C) map-header copies; class records are shared.
func (g *EGraph) beginEdit() *editor {
	ng := &EGraph{
		classes: make(map[uint32]*eclass, len(g.classes)+4),
		leaders: make(map[uint32]core.EClassCall, len(g.leaders)),
		cons:    make(map[uint64][]consEntry, len(g.cons)),
		nextID:  g.nextID,
		sem:     g.sem,
		facts:   g.facts.Clone(),
	}
	for id, c := range g.classes {
		ng.classes[id] = c
	}
	for id, l := range g.leaders {
		ng.leaders[id] = l
	}
	for fp, bucket := range g.cons {
		ng.cons[fp] = bucket
	}
	return &editor{g: ng, owned: make(map[uint32]bool)}
}

// class returns the record for a canonical id, read-only.
func (e *editor) class(id uint32) *eclass { return e.g.classes[id] }

// mut returns a writable record for a canonical id, cloning it into the
// snapshot on first write.
func (e *editor) mut(id uint32) *eclass {
	c := e.g.classes[id]
	if !e.owned[id] {
		c = c.clone()
		e.g.classes[id] = c
		e.owned[id] = true
	}
	return c
}

// consInsert registers key → class in the hash-cons index.
func (e *editor) consInsert(fp uint64, key string, class uint32) {
	bucket := e.g.cons[fp]
	// buckets are shared with the parent snapshot: copy before append.
	nb := make([]consEntry, len(bucket), len(bucket)+1)
	copy(nb, bucket)
	nb = append(nb, consEntry{key: key, class: class})
	e.g.cons[fp] = nb
}

// consRemove drops key from its bucket, if present.
func (e *editor) consRemove(fp uint64, key string) {
	bucket := e.g.cons[fp]
	nb := make([]consEntry, 0, len(bucket))
	for _, entry := range bucket {
		if entry.key != key {
			nb = append(nb, entry)
		}
	}
	if len(nb) == 0 {
		delete(e.g.cons, fp)
	} else {
		e.g.cons[fp] = nb
	}
}

// consSet repoints key at class, replacing any existing owner.
func (e *editor) consSet(fp uint64, key string, class uint32) {
	e.consRemove(fp, key)
	e.consInsert(fp, key, class)
}

// consLookup resolves a shape key to its owning class id.
func (g *EGraph) consLookup(fp uint64, key string) (uint32, bool) {
	for _, entry := range g.cons[fp] {
		if entry.key == key {
			return entry.class, true
		}
	}
	return 0, false
}
