// Package core: Op, EClassRef, EClassCall and ENode value types.
package core

import (
	"strconv"
	"strings"

	"github.com/katalvlaran/foresight/slots"
)

// Op is an operator symbol. Literal payloads are encoded into the symbol
// by the client vocabulary (for example "const:2").
type Op string

// EClassRef is the opaque, stable identity of an e-class. Two refs may
// come to denote the same class via union; the graph maintains a canonical
// representative per equivalence class, and non-canonical refs stay valid
// as canonicalization inputs forever.
type EClassRef struct {
	id uint32
}

// NewEClassRef wraps a raw class id. Intended for the egraph store; client
// code receives refs from the graph and never forges them.
func NewEClassRef(id uint32) EClassRef { return EClassRef{id: id} }

// ID returns the raw class id. Allocation is monotonic, so ids double as
// the deterministic tie-break order.
func (r EClassRef) ID() uint32 { return r.id }

// Less orders refs by allocation id.
func (r EClassRef) Less(o EClassRef) bool { return r.id < o.id }

// String renders the ref as "cN".
func (r EClassRef) String() string { return "c" + strconv.FormatUint(uint64(r.id), 10) }

// EClassCall applies an e-class in a caller context: Args maps the class's
// parameter slots to argument slots of the surrounding context. Args is
// always injective (a renaming onto its image).
type EClassCall struct {
	Ref  EClassRef
	Args slots.SlotMap
}

// Call builds an EClassCall.
func Call(ref EClassRef, args slots.SlotMap) EClassCall {
	return EClassCall{Ref: ref, Args: args}
}

// Rename re-targets the call's argument slots through m: every argument
// slot is replaced by its image under m (absent slots stay themselves).
// Complexity: O(|Args|)
func (c EClassCall) Rename(m slots.SlotMap) EClassCall {
	return EClassCall{Ref: c.Ref, Args: c.Args.ComposeRetain(m)}
}

// ArgSlots returns the argument (value) slots in key-sorted order.
func (c EClassCall) ArgSlots() []slots.Slot { return c.Args.Values() }

// Equal reports structural equality of ref and argument map.
func (c EClassCall) Equal(o EClassCall) bool {
	return c.Ref == o.Ref && c.Args.Equal(o.Args)
}

// Key returns a deterministic encoding of the call, usable as a map key.
func (c EClassCall) Key() string {
	var b strings.Builder
	writeCall(&b, c)
	return b.String()
}

// String renders "cN{$0→x, ...}".
func (c EClassCall) String() string { return c.Key() }

// ENode is a single operator occurrence with slot annotations and child
// class calls. The slots occurring in Defs, Uses and every Args[i] form
// the node's slot multiset.
type ENode struct {
	Op   Op
	Defs []slots.Slot
	Uses []slots.Slot
	Args []EClassCall
}

// NewENode builds an ENode. The slices are stored as given (nil stays nil);
// Equal and Key treat nil and empty slices alike.
func NewENode(op Op, defs, uses []slots.Slot, args []EClassCall) ENode {
	return ENode{Op: op, Defs: defs, Uses: uses, Args: args}
}

// SlotOccurrences returns every slot occurrence in encounter order:
// Defs, then Uses, then each arg's slots in key-sorted order. Duplicates
// are preserved.
// Complexity: O(total slots)
func (n ENode) SlotOccurrences() []slots.Slot {
	out := make([]slots.Slot, 0, len(n.Defs)+len(n.Uses))
	out = append(out, n.Defs...)
	out = append(out, n.Uses...)
	for _, a := range n.Args {
		out = append(out, a.ArgSlots()...)
	}
	return out
}

// Slots returns the node's slot set, sorted.
func (n ENode) Slots() []slots.Slot {
	return slots.SortedSet(n.SlotOccurrences())
}

// Rename applies m to every slot occurrence of the node (absent slots map
// to themselves) and returns the renamed node. The receiver is unchanged.
// Complexity: O(total slots)
func (n ENode) Rename(m slots.SlotMap) ENode {
	out := ENode{Op: n.Op}
	if len(n.Defs) > 0 {
		out.Defs = make([]slots.Slot, len(n.Defs))
		for i, s := range n.Defs {
			out.Defs[i] = m.Apply(s)
		}
	}
	if len(n.Uses) > 0 {
		out.Uses = make([]slots.Slot, len(n.Uses))
		for i, s := range n.Uses {
			out.Uses[i] = m.Apply(s)
		}
	}
	if len(n.Args) > 0 {
		out.Args = make([]EClassCall, len(n.Args))
		for i, a := range n.Args {
			out.Args[i] = a.Rename(m)
		}
	}
	return out
}

// Equal reports structural equality over (Op, Defs, Uses, Args).
func (n ENode) Equal(o ENode) bool {
	if n.Op != o.Op || len(n.Defs) != len(o.Defs) || len(n.Uses) != len(o.Uses) || len(n.Args) != len(o.Args) {
		return false
	}
	for i := range n.Defs {
		if n.Defs[i] != o.Defs[i] {
			return false
		}
	}
	for i := range n.Uses {
		if n.Uses[i] != o.Uses[i] {
			return false
		}
	}
	for i := range n.Args {
		if !n.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Key returns a deterministic structural encoding of the node.
func (n ENode) Key() string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

// String renders the node in its Key encoding.
func (n ENode) String() string { return n.Key() }

// writeNode appends the canonical node encoding to b.
func writeNode(b *strings.Builder, n ENode) {
	b.WriteString(string(n.Op))
	b.WriteString("|d:")
	for i, s := range n.Defs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.String())
	}
	b.WriteString("|u:")
	for i, s := range n.Uses {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.String())
	}
	for _, a := range n.Args {
		b.WriteString("|a:")
		writeCall(b, a)
	}
}

// writeCall appends the canonical call encoding (key-sorted map) to b.
func writeCall(b *strings.Builder, c EClassCall) {
	b.WriteString(c.Ref.String())
	b.WriteByte('{')
	for i, p := range c.Args.Pairs() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p[0].String())
		b.WriteString("→")
		b.WriteString(p[1].String())
	}
	b.WriteByte('}')
}
