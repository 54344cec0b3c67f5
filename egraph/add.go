// Package egraph: node insertion (hash-consed add).
package egraph

import (
	"fmt"

	"github.com/katalvlaran/foresight/analysis"
	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/parallel"
	"github.com/katalvlaran/foresight/slots"
)

// Add inserts one node, returning its class call and the new snapshot.
// Equivalent to TryAddMany with a single element and a sequential map.
func (g *EGraph) Add(node core.ENode) (core.EClassCall, *EGraph, error) {
	res, ng, err := g.TryAddMany([]core.ENode{node}, parallel.Sequential())
	if err != nil {
		return core.EClassCall{}, nil, err
	}
	return res[0].Call, ng, nil
}

// TryAddMany inserts a batch of nodes and returns one AddResult per input
// in input order, plus the new snapshot. Nodes within one batch are
// independent; pm parallelizes the read-only canonicalization and shape
// hashing, while insertions are serialized so hash-consing stays unique.
//
// Steps:
//  1. Canonicalize child calls and compute shapes (parallel, read-only).
//  2. For each shape in order: look it up in the hash-cons index; hit
//     yields the existing class call, miss allocates a fresh class.
//
// Complexity: O(n · node size) plus hash-cons lookups.
func (g *EGraph) TryAddMany(nodes []core.ENode, pm parallel.Map) ([]AddResult, *EGraph, error) {
	if len(nodes) == 0 {
		return nil, g, nil
	}
	// 1) parallel canonicalization against the immutable snapshot
	shapes, err := parallel.Apply(pm.Child("canonicalize"), nodes, func(n core.ENode) (core.ShapeCall, error) {
		return g.CanonicalizeNode(n)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("egraph: add canonicalization: %w", err)
	}

	// 2) serialized insertion
	e := g.beginEdit()
	out := make([]AddResult, len(nodes))
	for i, sc := range shapes {
		call, added := e.insertShape(sc)
		out[i] = AddResult{Call: call, Added: added}
	}
	e.compressLeaders()
	return out, e.g, nil
}

// insertShape adds one canonicalized shape, reusing the existing class on
// a hash-cons hit.
func (e *editor) insertShape(sc core.ShapeCall) (core.EClassCall, bool) {
	fp := sc.Shape.Fingerprint()
	key := sc.Shape.Key()
	if id, ok := e.g.consLookup(fp, key); ok {
		// the cons entry may predate a merge; resolve to the canonical owner
		if cid, ok := e.g.canonicalID(id); ok {
			if call, ok := e.callForShape(cid, key, sc.Renaming); ok {
				return call, false
			}
		}
	}
	return e.newClass(sc), true
}

// callForShape builds the caller-context call for a stored shape: the
// class's parameter slots are chased backwards through the stored renaming
// and forwards through the shape's inverse renaming.
func (e *editor) callForShape(classID uint32, key string, inv slots.SlotMap) (core.EClassCall, bool) {
	c := e.class(classID)
	entry, ok := c.shapes[key]
	if !ok {
		return core.EClassCall{}, false
	}
	rinv, err := entry.renaming.Inverse()
	if err != nil {
		// renamings are bijections by construction
		return core.EClassCall{}, false
	}
	// params → shape slots → caller slots
	args := rinv.Restrict(c.params).ComposeRetain(inv)
	return core.Call(core.NewEClassRef(classID), args), true
}

// newClass allocates a class for an unseen shape.
//
// The parameter slots are the shape slots visible to parents: uses and
// child-argument slots, minus definition slots (binders stay local).
func (e *editor) newClass(sc core.ShapeCall) core.EClassCall {
	id := e.g.nextID
	e.g.nextID++

	node := sc.Shape.Node()
	defset := make(map[slots.Slot]struct{}, len(node.Defs))
	for _, d := range node.Defs {
		defset[d] = struct{}{}
	}
	visible := make([]slots.Slot, 0, 4)
	visible = append(visible, node.Uses...)
	for _, a := range node.Args {
		visible = append(visible, a.ArgSlots()...)
	}
	params := make([]slots.Slot, 0, len(visible))
	for _, s := range slots.SortedSet(visible) {
		if _, bound := defset[s]; !bound {
			params = append(params, s)
		}
	}

	key := sc.Shape.Key()
	c := &eclass{
		params: params,
		shapes: map[string]shapeEntry{key: {shape: sc.Shape, renaming: slots.Identity(sc.Shape.Slots())}},
		group:  newPermGroup(params),
		users:  make(map[string]userRef),
	}
	e.g.classes[id] = c
	e.owned[id] = true
	e.consInsert(sc.Shape.Fingerprint(), key, id)

	// reverse edges: this node is a user of each child class
	for _, a := range node.Args {
		child := e.mut(a.Ref.ID())
		child.users[userKey(id, key)] = userRef{class: id, key: key}
	}

	e.makeFact(id, node)

	// the caller-context call restricts the identity renaming to params
	return core.Call(core.NewEClassRef(id), slots.Identity(params).ComposeRetain(sc.Renaming))
}

// makeFact seeds the analysis fact for a fresh class.
func (e *editor) makeFact(id uint32, node core.ENode) {
	if e.g.sem == nil {
		return
	}
	children := make([]analysis.Value, len(node.Args))
	for i, a := range node.Args {
		if v, ok := e.g.facts[a.Ref]; ok {
			children[i] = e.g.sem.Rename(v, a.Args)
		}
	}
	e.g.facts[core.NewEClassRef(id)] = e.g.sem.Make(node, children)
}
