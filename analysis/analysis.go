// Package analysis: semilattice interface and the per-class fact table.
package analysis

import (
	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/slots"
)

// Value is an opaque per-class fact. Concrete lattices define their own
// value types; the core only moves values through Make/Join/Rename.
type Value any

// Semilattice maintains one fact per e-class.
type Semilattice interface {
	// Make computes the fact contributed by one node, given the facts of
	// its child classes re-targeted into the node's slot context.
	Make(node core.ENode, children []Value) Value

	// Join combines the facts of two classes proven equal. Must be
	// commutative, associative and idempotent.
	Join(a, b Value) Value

	// Rename re-targets a fact when the class's slots are renamed via m.
	Rename(v Value, m slots.SlotMap) Value
}

// Table maps canonical e-class refs to their current fact. The e-graph
// clones tables on write, so snapshots may share one underlying map;
// treat tables as immutable values.
type Table map[core.EClassRef]Value

// Get returns the fact for ref, if any.
func (t Table) Get(ref core.EClassRef) (Value, bool) {
	v, ok := t[ref]
	return v, ok
}

// Clone returns a private copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
