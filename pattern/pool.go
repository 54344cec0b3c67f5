// Package pattern: pooled machine states.
package pattern

import (
	"sync"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/slots"
)

// state is one machine execution state: the register file, variable and
// slot bindings, and the bound-node list.
type state struct {
	regs  []core.EClassCall
	vars  map[Var]core.EClassCall
	slots map[slots.Slot]slots.Slot
	nodes []core.ENode
}

// statePool recycles machine states per pattern. Capacities come from the
// pattern's effect summary, so borrowing never grows the backing arrays
// after warmup; sync.Pool keeps the cache per-P (thread-local in
// practice).
type statePool struct {
	pool sync.Pool
}

func newStatePool(eff EffectSummary) *statePool {
	return &statePool{pool: sync.Pool{New: func() any {
		return &state{
			regs:  make([]core.EClassCall, 0, eff.Registers),
			vars:  make(map[Var]core.EClassCall, eff.Vars),
			slots: make(map[slots.Slot]slots.Slot, eff.Slots),
			nodes: make([]core.ENode, 0, eff.Nodes),
		}
	}}}
}

// borrow takes an empty state from the pool.
func (p *statePool) borrow() *state {
	return p.pool.Get().(*state)
}

// cloneOf borrows a state and copies src's bindings into it.
func (p *statePool) cloneOf(src *state) *state {
	st := p.borrow()
	st.regs = append(st.regs, src.regs...)
	for k, v := range src.vars {
		st.vars[k] = v
	}
	for k, v := range src.slots {
		st.slots[k] = v
	}
	st.nodes = append(st.nodes, src.nodes...)
	return st
}

// release wipes a state and returns it to the pool.
func (p *statePool) release(st *state) {
	st.regs = st.regs[:0]
	st.nodes = st.nodes[:0]
	clear(st.vars)
	clear(st.slots)
	p.pool.Put(st)
}
