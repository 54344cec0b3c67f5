// Package slots defines the variable identifiers and renamings that the
// rest of foresight is built on.
//
// # Slots
//
// A Slot is a symbolic variable identifier. Two flavors exist:
//
//   - Numeric slots are value-based: Numeric(3) == Numeric(3). They are the
//     canonical names used inside shapes ($0, $1, ... in encounter order).
//   - Fresh slots are identity-based: each call to Fresh() yields a slot
//     equal only to itself. Use them wherever a variable must be guaranteed
//     not to alias any other.
//
// The total order puts all numeric slots before all fresh slots; numeric
// slots order by integer, fresh slots by allocation order. Fresh identities
// are stable within a run and never persisted.
//
// # SlotMaps
//
// A SlotMap is a finite function from Slot to Slot, used both for
// parameter→argument bindings of e-class calls and for renamings between
// slot spaces. Maps are immutable by convention: every operation returns a
// new map and never mutates its receiver. Iteration is key-sorted, so all
// derived encodings are deterministic.
//
// The four composition variants differ only in how they treat an entry
// a→b whose image b is not a key of the other map:
//
//	Compose        - error (ErrComposeMismatch)
//	ComposePartial - drop the entry
//	ComposeRetain  - keep a→b unchanged
//	ComposeFresh   - map a to a fresh slot
package slots
