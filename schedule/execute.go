// Package schedule: execution against a store and schedule optimization.
package schedule

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/egraph"
	"github.com/katalvlaran/foresight/parallel"
)

// Execute replays the schedule onto g and returns the resulting snapshot
// plus whether anything changed (a class allocated, or classes merged).
//
// Steps:
//  1. Per batch in order: reify every child symbol through the bindings
//     accumulated so far, then TryAddMany the batch, recording each
//     result under its bound virtual.
//  2. Reify the union pairs, drop the already-equal ones, UnionMany the
//     rest.
//
// Complexity: O(planned nodes + unions) store operations.
func (s *Schedule) Execute(g *egraph.EGraph, pm parallel.Map) (*egraph.EGraph, bool, error) {
	if s.IsEmpty() {
		return g, false, nil
	}
	bound := make(map[uint32]core.EClassCall)
	cur := g
	changed := false

	// 1) addition batches
	for bi, batch := range s.Batches {
		if len(batch) == 0 {
			continue
		}
		nodes := make([]core.ENode, len(batch))
		for i, a := range batch {
			n, err := reifyNode(cur, a.Node, bound)
			if err != nil {
				return nil, false, fmt.Errorf("schedule: batch %d: %w", bi, err)
			}
			nodes[i] = n
		}
		results, ng, err := cur.TryAddMany(nodes, pm.Child("add"))
		if err != nil {
			return nil, false, err
		}
		cur = ng
		for i, res := range results {
			if res.Added {
				changed = true
			}
			if batch[i].Bind != nil {
				bound[batch[i].Bind.ID] = res.Call
			}
		}
	}

	// 2) unions
	pairs := make([][2]core.EClassCall, 0, len(s.Unions))
	for _, u := range s.Unions {
		a, err := reifySym(cur, u[0], nil, bound)
		if err != nil {
			return nil, false, err
		}
		b, err := reifySym(cur, u[1], nil, bound)
		if err != nil {
			return nil, false, err
		}
		if cur.AreSame(a, b) {
			continue
		}
		pairs = append(pairs, [2]core.EClassCall{a, b})
	}
	if len(pairs) > 0 {
		groups, ng, err := cur.UnionMany(pairs, pm.Child("union"))
		if err != nil {
			return nil, false, err
		}
		cur = ng
		if len(groups) > 0 {
			changed = true
		}
	}
	return cur, changed, nil
}

// reifyNode resolves a planned node's children to concrete calls.
func reifyNode(g *egraph.EGraph, n Node, bound map[uint32]core.EClassCall) (core.ENode, error) {
	args := make([]core.EClassCall, len(n.Children))
	for i, c := range n.Children {
		call, err := reifySym(g, c.Sym, &c, bound)
		if err != nil {
			return core.ENode{}, err
		}
		args[i] = call
	}
	return core.NewENode(n.Op, n.Defs, n.Uses, args), nil
}

// reifySym resolves a symbol; child carries the optional per-position
// renaming applied to the resolved call.
func reifySym(g *egraph.EGraph, sym EClassSymbol, child *Child, bound map[uint32]core.EClassCall) (core.EClassCall, error) {
	var call core.EClassCall
	switch v := sym.(type) {
	case Real:
		call = v.Call
	case Virtual:
		c, ok := bound[v.ID]
		if !ok {
			return core.EClassCall{}, fmt.Errorf("%w: v%d", ErrUnboundVirtual, v.ID)
		}
		call = c
	default:
		return core.EClassCall{}, fmt.Errorf("schedule: unknown symbol variant %T", sym)
	}
	if child != nil && child.Rename.Len() > 0 {
		call = call.Rename(child.Rename)
	}
	return call, nil
}

// Optimized returns an equivalent schedule with all additions ahead of
// all unions, contiguous batches coalesced wherever virtual data-flow
// permits, and duplicate union pairs removed. The receiver is unchanged.
// Complexity: O(size)
func (s *Schedule) Optimized() *Schedule {
	out := &Schedule{}

	// coalesce batches greedily: an addition may sink into the current
	// open batch unless it consumes a virtual bound inside that batch
	var open []Add
	openBinds := make(map[uint32]struct{})
	flush := func() {
		if len(open) > 0 {
			out.Batches = append(out.Batches, open)
			open = nil
			openBinds = make(map[uint32]struct{})
		}
	}
	for _, batch := range s.Batches {
		for _, a := range batch {
			for _, c := range a.Node.Children {
				if v, ok := c.Sym.(Virtual); ok {
					if _, inOpen := openBinds[v.ID]; inOpen {
						flush()
						break
					}
				}
			}
			open = append(open, a)
			if a.Bind != nil {
				openBinds[a.Bind.ID] = struct{}{}
			}
		}
	}
	flush()

	// dedupe unions, order-preserving on first occurrence
	seen := make(map[string]struct{}, len(s.Unions))
	for _, u := range s.Unions {
		k := symKey(u[0]) + "∪" + symKey(u[1])
		if rk := symKey(u[1]) + "∪" + symKey(u[0]); rk < k {
			k = rk
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out.Unions = append(out.Unions, u)
	}
	return out
}

func symKey(sym EClassSymbol) string {
	switch v := sym.(type) {
	case Real:
		return "r:" + v.Call.Key()
	case Virtual:
		return fmt.Sprintf("v:%d", v.ID)
	default:
		return "?"
	}
}

// Stats summarizes a schedule for logging.
type Stats struct {
	Batches   int
	Additions int
	Unions    int
}

// Summarize counts the schedule's planned work.
func (s *Schedule) Summarize() Stats {
	st := Stats{Batches: len(s.Batches), Unions: len(s.Unions)}
	for _, b := range s.Batches {
		st.Additions += len(b)
	}
	return st
}

// SortUnions orders union pairs by symbol key, for deterministic replay
// of schedules assembled from concurrently produced fragments.
func (s *Schedule) SortUnions() {
	sort.Slice(s.Unions, func(i, j int) bool {
		ki := symKey(s.Unions[i][0]) + "∪" + symKey(s.Unions[i][1])
		kj := symKey(s.Unions[j][0]) + "∪" + symKey(s.Unions[j][1])
		return ki < kj
	})
}
