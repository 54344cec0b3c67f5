// Package core: shapes — renaming-normal node forms used as hash-cons keys.
package core

import (
	"github.com/cespare/xxhash/v2"

	"github.com/katalvlaran/foresight/slots"
)

// Shape is an ENode whose slots are exactly $0..$k-1 in first-occurrence
// order. Shapes are produced by ENode.Shape and compared by Key; two nodes
// are alpha-equivalent iff their shapes are equal.
type Shape struct {
	node ENode
}

// Node returns the underlying numeric-slot node.
func (s Shape) Node() ENode { return s.node }

// Key returns the canonical byte encoding of the shape. Equal shapes have
// equal keys and vice versa.
func (s Shape) Key() string { return s.node.Key() }

// Fingerprint returns the 64-bit xxhash of the shape key, used to bucket
// the hash-cons index. Buckets verify the full key on lookup.
func (s Shape) Fingerprint() uint64 { return xxhash.Sum64String(s.Key()) }

// Equal reports shape equality.
func (s Shape) Equal(o Shape) bool { return s.node.Equal(o.node) }

// Slots returns the shape's numeric slots, sorted ($0..$k-1).
func (s Shape) Slots() []slots.Slot { return s.node.Slots() }

// ShapeCall pairs a shape with the inverse renaming from its numeric slots
// back to the original slots, so the source node can be reconstructed:
//
//	sc.Shape.Node().Rename(sc.Renaming)
type ShapeCall struct {
	Shape    Shape
	Renaming slots.SlotMap // numeric → original; always a bijection
}

// Node reconstructs the node the shape was computed from.
func (sc ShapeCall) Node() ENode { return sc.Shape.Node().Rename(sc.Renaming) }

// Shape computes the node's renaming-normal form and the inverse renaming.
//
// Steps:
//  1. Walk slot occurrences in encounter order (Defs, Uses, then each
//     arg's slots key-sorted) assigning $0, $1, ... to each distinct slot.
//  2. Rename the node through the forward map (original → numeric).
//  3. Invert the forward map for the ShapeCall renaming.
//
// Complexity: O(total slots)
func (n ENode) Shape() ShapeCall {
	forward := make([][2]slots.Slot, 0, 4)
	seen := make(map[slots.Slot]slots.Slot, 4)
	next := uint32(0)
	for _, s := range n.SlotOccurrences() {
		if _, ok := seen[s]; ok {
			continue
		}
		num := slots.Numeric(next)
		next++
		seen[s] = num
		forward = append(forward, [2]slots.Slot{s, num})
	}
	fw := slots.FromPairs(forward...)
	inv := make([][2]slots.Slot, len(forward))
	for i, p := range forward {
		inv[i] = [2]slots.Slot{p[1], p[0]}
	}
	return ShapeCall{
		Shape:    Shape{node: n.Rename(fw)},
		Renaming: slots.FromPairs(inv...),
	}
}
