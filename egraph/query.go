// Package egraph: read-side queries over the store.
package egraph

import (
	"sort"

	"github.com/katalvlaran/foresight/core"
)

// Nodes materializes the class's stored shapes into the caller's slot
// space given by call.Args. Internal class slots (binders, redundant
// slots) come out as fresh slots, so two calls to Nodes agree up to
// alpha-equivalence. Results are shape-key ordered.
//
// Complexity: O(nodes · node size)
func (g *EGraph) Nodes(call core.EClassCall) ([]core.ENode, error) {
	c, err := g.Canonicalize(call)
	if err != nil {
		return nil, err
	}
	cls := g.classes[c.Ref.ID()]
	keys := sortedShapeKeys(cls)
	out := make([]core.ENode, 0, len(keys))
	for _, k := range keys {
		entry := cls.shapes[k]
		// shape slots → class space → caller space; non-parameters fresh
		mat := entry.renaming.ComposeFresh(c.Args)
		out = append(out, entry.shape.Node().Rename(mat))
	}
	return out, nil
}

// Users returns the nodes whose args mention ref, each materialized in its
// owning class's slot space. Shape-key ordered per owner.
// Complexity: O(users · node size)
func (g *EGraph) Users(ref core.EClassRef) ([]core.ENode, error) {
	id, ok := g.canonicalID(ref.ID())
	if !ok {
		return nil, ErrUnknownRef
	}
	cls := g.classes[id]
	type located struct {
		owner uint32
		key   string
	}
	locs := make([]located, 0, len(cls.users))
	for _, u := range cls.users {
		owner, ok := g.canonicalID(u.class)
		if !ok {
			continue
		}
		if _, live := g.classes[owner].shapes[u.key]; !live {
			continue // stale entry awaiting lazy cleanup
		}
		locs = append(locs, located{owner: owner, key: u.key})
	}
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].owner != locs[j].owner {
			return locs[i].owner < locs[j].owner
		}
		return locs[i].key < locs[j].key
	})
	out := make([]core.ENode, 0, len(locs))
	var prev *located
	for i := range locs {
		l := locs[i]
		if prev != nil && *prev == l {
			continue
		}
		prev = &locs[i]
		entry := g.classes[l.owner].shapes[l.key]
		out = append(out, entry.shape.Node().Rename(entry.renaming))
	}
	return out, nil
}

// Find looks a node up by shape. The returned call maps the owning class's
// parameters into the node's own slot context; ok is false when no class
// holds the shape.
// Complexity: O(node size)
func (g *EGraph) Find(node core.ENode) (core.EClassCall, bool) {
	sc, err := g.CanonicalizeNode(node)
	if err != nil {
		return core.EClassCall{}, false
	}
	id, ok := g.consLookup(sc.Shape.Fingerprint(), sc.Shape.Key())
	if !ok {
		return core.EClassCall{}, false
	}
	cid, ok := g.canonicalID(id)
	if !ok {
		return core.EClassCall{}, false
	}
	return (&editor{g: g}).callForShape(cid, sc.Shape.Key(), sc.Renaming)
}

// Contains reports whether some class holds the node's shape.
func (g *EGraph) Contains(node core.ENode) bool {
	_, ok := g.Find(node)
	return ok
}

// AreSame reports whether two calls denote the same class: canonical refs
// equal and argument maps agreeing on the canonical parameter slots modulo
// the class's permutation group.
// Complexity: O(|group| · |params|)
func (g *EGraph) AreSame(a, b core.EClassCall) bool {
	ca, err := g.Canonicalize(a)
	if err != nil {
		return false
	}
	cb, err := g.Canonicalize(b)
	if err != nil {
		return false
	}
	if ca.Ref != cb.Ref {
		return false
	}
	if ca.Args.Equal(cb.Args) {
		return true
	}
	cls := g.classes[ca.Ref.ID()]
	for _, p := range cls.group.all() {
		if ca.Args.Equal(p.ComposeRetain(cb.Args)) {
			return true
		}
	}
	return false
}

func sortedShapeKeys(c *eclass) []string {
	keys := make([]string, 0, len(c.shapes))
	for k := range c.shapes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
