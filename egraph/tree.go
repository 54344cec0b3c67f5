// Package egraph: adding whole terms.
package egraph

import (
	"fmt"

	"github.com/katalvlaran/foresight/core"
)

// AddTree inserts a ground term bottom-up and returns the root's class
// call plus the new snapshot.
// Complexity: O(nodes · node size)
func (g *EGraph) AddTree(t *core.Tree) (core.EClassCall, *EGraph, error) {
	return g.AddMixedTree(t.Mixed())
}

// AddMixedTree inserts a term whose leaves may already be class calls of
// this graph.
func (g *EGraph) AddMixedTree(mt core.MixedTree) (core.EClassCall, *EGraph, error) {
	call, ng, err := addMixed(g, mt)
	if err != nil {
		return core.EClassCall{}, nil, err
	}
	return call, ng, nil
}

func addMixed(g *EGraph, mt core.MixedTree) (core.EClassCall, *EGraph, error) {
	switch t := mt.(type) {
	case core.MixedCall:
		call, err := g.Canonicalize(t.Call)
		if err != nil {
			return core.EClassCall{}, nil, err
		}
		return call, g, nil
	case core.MixedNode:
		args := make([]core.EClassCall, len(t.Children))
		cur := g
		for i, child := range t.Children {
			call, ng, err := addMixed(cur, child)
			if err != nil {
				return core.EClassCall{}, nil, err
			}
			args[i] = call
			cur = ng
		}
		node := core.NewENode(t.Op, t.Defs, t.Uses, args)
		call, ng, err := cur.Add(node)
		if err != nil {
			return core.EClassCall{}, nil, err
		}
		return call, ng, nil
	default:
		return core.EClassCall{}, nil, fmt.Errorf("egraph: unknown mixed tree variant %T", mt)
	}
}
