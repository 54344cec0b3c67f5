// Package pattern: the register machine and its execution contract.
package pattern

import (
	"sort"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/egraph"
	"github.com/katalvlaran/foresight/slots"
)

// Match is one successful pattern occurrence: the root call it was found
// at, the variable bindings, the pattern-slot → actual-slot bindings and
// the nodes bound along the way (informational).
type Match struct {
	Root  core.EClassCall
	Vars  map[Var]core.EClassCall
	Slots slots.SlotMap
	Nodes []core.ENode
}

// Port re-targets the match to a derived graph by canonicalizing every
// stored call. Matches whose refs are unknown to g fail with the store's
// ErrUnknownRef.
func (m Match) Port(g *egraph.EGraph) (Match, error) {
	root, err := g.Canonicalize(m.Root)
	if err != nil {
		return Match{}, err
	}
	vars := make(map[Var]core.EClassCall, len(m.Vars))
	for v, call := range m.Vars {
		c, err := g.Canonicalize(call)
		if err != nil {
			return Match{}, err
		}
		vars[v] = c
	}
	return Match{Root: root, Vars: vars, Slots: m.Slots, Nodes: m.Nodes}, nil
}

// Key returns a deterministic encoding of the match's root, variable and
// slot bindings, used by caching layers to recognize already-applied matches.
func (m Match) Key() string {
	key := "@" + m.Root.Key()
	vars := make([]string, 0, len(m.Vars))
	for v := range m.Vars {
		vars = append(vars, string(v))
	}
	sort.Strings(vars)
	for _, v := range vars {
		key += "|" + v + "=" + m.Vars[Var(v)].Key()
	}
	key += "|s:" + m.Slots.String()
	return key
}

// Run executes the compiled pattern against root, invoking yield for each
// match. Enumeration stops when yield returns false; Run reports whether
// it ran to exhaustion.
//
// Machine semantics:
//   - instructions run in order; register 0 starts as root
//   - a BindNode with several candidates forks: the first candidate
//     continues on the current state, the rest on pooled clones taken
//     before descending
//   - failures (no candidate, Compare mismatch) prune the branch
//
// Candidate order is the store's shape-key order, so a given graph yields
// matches deterministically.
func (c *Compiled) Run(g *egraph.EGraph, root core.EClassCall, yield func(*Match) bool) bool {
	st := c.pool.borrow()
	defer c.pool.release(st)
	st.regs = append(st.regs, root)
	return c.exec(g, 0, st, yield)
}

// Search runs the pattern at every canonical class of g in id order.
func (c *Compiled) Search(g *egraph.EGraph, yield func(*Match) bool) bool {
	for _, ref := range g.Classes() {
		call, err := g.CanonicalizeRef(ref)
		if err != nil {
			continue
		}
		if !c.Run(g, call, yield) {
			return false
		}
	}
	return true
}

// exec runs instructions from idx on st.
func (c *Compiled) exec(g *egraph.EGraph, idx int, st *state, yield func(*Match) bool) bool {
	for ; idx < len(c.instrs); idx++ {
		switch ins := c.instrs[idx].(type) {
		case BindVar:
			st.vars[ins.Var] = st.regs[ins.Reg]
		case Compare:
			if !g.AreSame(st.regs[ins.A], st.regs[ins.B]) {
				return true // prune this branch
			}
		case BindNode:
			return c.execBindNode(g, idx, ins, st, yield)
		}
	}
	m := st.match()
	return yield(&m)
}

// execBindNode enumerates candidates and forks per extra candidate.
func (c *Compiled) execBindNode(g *egraph.EGraph, idx int, ins BindNode, st *state, yield func(*Match) bool) bool {
	nodes, err := g.Nodes(st.regs[ins.Reg])
	if err != nil {
		return true
	}
	candidates := nodes[:0]
	for _, n := range nodes {
		if n.Op == ins.Op && len(n.Args) == ins.ArgCount &&
			len(n.Defs) == len(ins.Defs) && len(n.Uses) == len(ins.Uses) {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return true
	}
	// clone for every candidate beyond the first before mutating st
	clones := make([]*state, 0, len(candidates)-1)
	for i := 1; i < len(candidates); i++ {
		clones = append(clones, c.pool.cloneOf(st))
	}
	cont := true
	if st.bindNode(ins, candidates[0]) {
		cont = c.exec(g, idx+1, st, yield)
	}
	for i, clone := range clones {
		if cont && clone.bindNode(ins, candidates[i+1]) {
			cont = c.exec(g, idx+1, clone, yield)
		}
		c.pool.release(clone)
	}
	return cont
}

// bindNode establishes slot bindings and pushes child calls; reports
// whether the candidate is consistent with bindings made so far.
func (st *state) bindNode(ins BindNode, n core.ENode) bool {
	for i, p := range ins.Defs {
		if !st.bindSlot(p, n.Defs[i]) {
			return false
		}
	}
	for i, p := range ins.Uses {
		if !st.bindSlot(p, n.Uses[i]) {
			return false
		}
	}
	st.regs = append(st.regs, n.Args...)
	st.nodes = append(st.nodes, n)
	return true
}

func (st *state) bindSlot(pat, actual slots.Slot) bool {
	if prev, ok := st.slots[pat]; ok {
		return prev == actual
	}
	st.slots[pat] = actual
	return true
}

// Diagnose reruns the pattern at root and reports the first failure when
// no match exists: ErrNoMatchingNode or ErrInconsistentVars. A nil return
// means at least one match.
func (c *Compiled) Diagnose(g *egraph.EGraph, root core.EClassCall) error {
	matched := false
	var firstErr error
	note := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}
	c.diagnose(g, 0, nil, root, note, &matched)
	if matched {
		return nil
	}
	if firstErr == nil {
		firstErr = ErrNoMatchingNode
	}
	return firstErr
}

// diagnose mirrors exec with failure reporting; slower, diagnostics only.
func (c *Compiled) diagnose(g *egraph.EGraph, idx int, st *state, root core.EClassCall, note func(error), matched *bool) {
	if st == nil {
		st = c.pool.borrow()
		defer c.pool.release(st)
		st.regs = append(st.regs, root)
	}
	for ; idx < len(c.instrs); idx++ {
		switch ins := c.instrs[idx].(type) {
		case BindVar:
			st.vars[ins.Var] = st.regs[ins.Reg]
		case Compare:
			if !g.AreSame(st.regs[ins.A], st.regs[ins.B]) {
				note(ErrInconsistentVars)
				return
			}
		case BindNode:
			nodes, err := g.Nodes(st.regs[ins.Reg])
			if err != nil {
				note(ErrNoMatchingNode)
				return
			}
			found := false
			for _, n := range nodes {
				if n.Op != ins.Op || len(n.Args) != ins.ArgCount ||
					len(n.Defs) != len(ins.Defs) || len(n.Uses) != len(ins.Uses) {
					continue
				}
				clone := c.pool.cloneOf(st)
				if clone.bindNode(ins, n) {
					found = true
					c.diagnose(g, idx+1, clone, root, note, matched)
				}
				c.pool.release(clone)
			}
			if !found {
				note(ErrNoMatchingNode)
			}
			return
		}
	}
	*matched = true
}

// match snapshots the final state into a Match.
func (st *state) match() Match {
	vars := make(map[Var]core.EClassCall, len(st.vars))
	for v, call := range st.vars {
		vars[v] = call
	}
	pairs := make([][2]slots.Slot, 0, len(st.slots))
	for p, a := range st.slots {
		pairs = append(pairs, [2]slots.Slot{p, a})
	}
	nodes := make([]core.ENode, len(st.nodes))
	copy(nodes, st.nodes)
	return Match{
		Root:  st.regs[0],
		Vars:  vars,
		Slots: slots.FromPairs(pairs...),
		Nodes: nodes,
	}
}
