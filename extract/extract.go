// Package extract: the Extractor contract and the bottom-up extractor.
//
// Errors:
//
//	ErrNoGroundTerm - a class reachable from the root admits no finite
//	                  ground term (every node cycles back into it).
package extract

import (
	"errors"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/egraph"
)

// ErrNoGroundTerm indicates extraction hit a class with no finite tree.
var ErrNoGroundTerm = errors.New("extract: class has no ground term")

// Extractor maps a class call to its least-cost ground tree. Must be
// deterministic and total over classes reachable from the call.
type Extractor interface {
	Extract(call core.EClassCall, g *egraph.EGraph) (*core.Tree, error)
}

// CostFunc scores one node given its operator and child costs. Costs must
// be non-negative and the function monotone in each child cost.
type CostFunc func(op core.Op, childCosts []float64) float64

// TreeSize is the default cost: node count.
func TreeSize(_ core.Op, childCosts []float64) float64 {
	total := 1.0
	for _, c := range childCosts {
		total += c
	}
	return total
}

// BottomUp extracts by fixpoint cost assignment. Construct with NewBottomUp.
type BottomUp struct {
	cost CostFunc
}

// NewBottomUp returns a BottomUp extractor over cost (TreeSize when nil).
func NewBottomUp(cost CostFunc) *BottomUp {
	if cost == nil {
		cost = TreeSize
	}
	return &BottomUp{cost: cost}
}

// Extract implements Extractor.
//
// Steps:
//  1. Fixpoint: repeatedly sweep all classes, assigning each the cheapest
//     cost among its nodes whose children are all costed; ties prefer the
//     smaller shape index (shape-key order).
//  2. Rebuild: walk the winning nodes from the root call, materializing
//     each node in its caller's slot context.
//
// Complexity: O(classes · nodes) per sweep, at most `classes` sweeps.
func (b *BottomUp) Extract(call core.EClassCall, g *egraph.EGraph) (*core.Tree, error) {
	root, err := g.Canonicalize(call)
	if err != nil {
		return nil, err
	}

	type choice struct {
		cost float64
		idx  int // index into the class's shape-key-ordered node list
	}
	chosen := make(map[uint32]choice, g.ClassCount())

	// 1) fixpoint over all classes
	refs := g.Classes()
	for {
		progressed := false
		for _, ref := range refs {
			id := ref.ID()
			ident, err := g.CanonicalizeRef(ref)
			if err != nil {
				return nil, err
			}
			nodes, err := g.Nodes(ident)
			if err != nil {
				return nil, err
			}
			for idx, n := range nodes {
				costs := make([]float64, len(n.Args))
				ok := true
				for i, a := range n.Args {
					ch, done := chosen[a.Ref.ID()]
					if !done {
						ok = false
						break
					}
					costs[i] = ch.cost
				}
				if !ok {
					continue
				}
				c := b.cost(n.Op, costs)
				if prev, has := chosen[id]; !has || c < prev.cost || (c == prev.cost && idx < prev.idx) {
					chosen[id] = choice{cost: c, idx: idx}
					progressed = true
				}
			}
		}
		if !progressed {
			break
		}
	}

	// 2) rebuild along the winners
	var build func(call core.EClassCall) (*core.Tree, error)
	build = func(call core.EClassCall) (*core.Tree, error) {
		c, err := g.Canonicalize(call)
		if err != nil {
			return nil, err
		}
		ch, ok := chosen[c.Ref.ID()]
		if !ok {
			return nil, ErrNoGroundTerm
		}
		nodes, err := g.Nodes(c)
		if err != nil {
			return nil, err
		}
		n := nodes[ch.idx]
		kids := make([]*core.Tree, len(n.Args))
		for i, a := range n.Args {
			kid, err := build(a)
			if err != nil {
				return nil, err
			}
			kids[i] = kid
		}
		t := core.NewTree(n.Op, kids...)
		t.Defs = n.Defs
		t.Uses = n.Uses
		return t, nil
	}
	return build(root)
}
