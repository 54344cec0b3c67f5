// Package egraph: canonicalization of refs, calls and nodes.
package egraph

import (
	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/slots"
)

// CanonicalizeRef returns the canonical call for ref: the representative
// class of ref's equivalence class, with the argument map translating the
// representative's parameter slots into ref's original slot space. For a
// canonical ref this is the identity map on its parameter slots.
//
// Steps:
//  1. If ref is canonical, answer the identity call.
//  2. Otherwise follow leader edges, composing the slot translations.
//  3. Restrict the final map to the representative's current parameters.
//
// Complexity: O(chain length); chains are compressed after every
// UnionMany, so lookups between mutations walk at most one edge.
func (g *EGraph) CanonicalizeRef(ref core.EClassRef) (core.EClassCall, error) {
	cur, ok := g.rawLeader(ref.ID())
	if !ok {
		return core.EClassCall{}, ErrUnknownRef
	}
	return cur, nil
}

// rawLeader resolves an id to its canonical call without error wrapping.
func (g *EGraph) rawLeader(id uint32) (core.EClassCall, bool) {
	if c, ok := g.classes[id]; ok {
		return core.Call(core.NewEClassRef(id), slots.Identity(c.params)), true
	}
	cur, ok := g.leaders[id]
	if !ok {
		return core.EClassCall{}, false
	}
	for {
		if c, ok := g.classes[cur.Ref.ID()]; ok {
			return core.Call(cur.Ref, cur.Args.Restrict(c.params)), true
		}
		next := g.leaders[cur.Ref.ID()]
		// next: params(l') → l-space; cur: params(l) → target space.
		cur = core.Call(next.Ref, next.Args.ComposePartial(cur.Args))
	}
}

// Canonicalize canonicalizes a call: the ref is resolved to its
// representative and the argument map re-targeted and restricted to the
// representative's parameter slots. ErrMalformedCall when the call does
// not bind every parameter the representative exposes.
// Complexity: O(|args|)
func (g *EGraph) Canonicalize(call core.EClassCall) (core.EClassCall, error) {
	lead, ok := g.rawLeader(call.Ref.ID())
	if !ok {
		return core.EClassCall{}, ErrUnknownRef
	}
	// lead.Args: params(rep) → call.Ref's slot space; chase through the
	// call's own argument map to land in the caller's context.
	args := lead.Args.ComposePartial(call.Args)
	if args.Len() != lead.Args.Len() {
		return core.EClassCall{}, ErrMalformedCall
	}
	return core.Call(lead.Ref, args), nil
}

// CanonicalizeNode canonicalizes each child call of node and returns the
// node's shape with its inverse renaming.
// Complexity: O(|args| + total slots)
func (g *EGraph) CanonicalizeNode(node core.ENode) (core.ShapeCall, error) {
	out := node
	if len(node.Args) > 0 {
		out.Args = make([]core.EClassCall, len(node.Args))
		for i, a := range node.Args {
			ca, err := g.Canonicalize(a)
			if err != nil {
				return core.ShapeCall{}, err
			}
			out.Args[i] = ca
		}
	}
	return out.Shape(), nil
}

// canonicalID resolves an id to its canonical class id, ignoring slots.
func (g *EGraph) canonicalID(id uint32) (uint32, bool) {
	if _, ok := g.classes[id]; ok {
		return id, true
	}
	cur, ok := g.leaders[id]
	if !ok {
		return 0, false
	}
	for {
		if _, ok := g.classes[cur.Ref.ID()]; ok {
			return cur.Ref.ID(), true
		}
		cur = g.leaders[cur.Ref.ID()]
	}
}

// compressLeaders rewrites every leader edge to point one hop from its
// canonical representative, keeping later canonicalizations O(1).
// Complexity: O(non-canonical ids · chain length)
func (e *editor) compressLeaders() {
	for id := range e.g.leaders {
		if lead, ok := e.g.rawLeader(id); ok {
			e.g.leaders[id] = lead
		}
	}
}
