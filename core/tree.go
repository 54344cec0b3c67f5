// Package core: ground and mixed term trees.
package core

import (
	"strings"

	"github.com/katalvlaran/foresight/slots"
)

// Tree is a ground term: one operator occurrence per node with binder and
// use slots, no e-class references. Trees are what clients construct and
// what extractors return.
type Tree struct {
	Op       Op
	Defs     []slots.Slot
	Uses     []slots.Slot
	Children []*Tree
}

// NewTree builds a tree node with the given children.
func NewTree(op Op, children ...*Tree) *Tree {
	return &Tree{Op: op, Children: children}
}

// Bind sets the tree node's binder slots and returns the node for
// chaining: NewTree("lambda", body).Bind(x).
func (t *Tree) Bind(defs ...slots.Slot) *Tree {
	t.Defs = defs
	return t
}

// Use sets the tree node's use slots and returns the node for chaining.
func (t *Tree) Use(uses ...slots.Slot) *Tree {
	t.Uses = uses
	return t
}

// FreeSlots returns the slots visible to the context of t: uses of every
// node minus slots bound by an enclosing binder on the path.
// Complexity: O(nodes · slots)
func (t *Tree) FreeSlots() []slots.Slot {
	var free []slots.Slot
	collectFree(t, map[slots.Slot]int{}, &free)
	return slots.SortedSet(free)
}

func collectFree(t *Tree, bound map[slots.Slot]int, out *[]slots.Slot) {
	for _, d := range t.Defs {
		bound[d]++
	}
	for _, u := range t.Uses {
		if bound[u] == 0 {
			*out = append(*out, u)
		}
	}
	for _, c := range t.Children {
		collectFree(c, bound, out)
	}
	for _, d := range t.Defs {
		bound[d]--
	}
}

// Equal reports structural tree equality (slots compared literally; use
// egraph canonicalization for alpha-equivalence).
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Op != o.Op || len(t.Defs) != len(o.Defs) || len(t.Uses) != len(o.Uses) || len(t.Children) != len(o.Children) {
		return false
	}
	for i := range t.Defs {
		if t.Defs[i] != o.Defs[i] {
			return false
		}
	}
	for i := range t.Uses {
		if t.Uses[i] != o.Uses[i] {
			return false
		}
	}
	for i := range t.Children {
		if !t.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	n := 1
	for _, c := range t.Children {
		n += c.Size()
	}
	return n
}

// String renders the tree as op(child, ...), annotating binders as
// op[defs](...) and uses as op<uses>.
func (t *Tree) String() string {
	var b strings.Builder
	writeTree(&b, t)
	return b.String()
}

func writeTree(b *strings.Builder, t *Tree) {
	b.WriteString(string(t.Op))
	if len(t.Defs) > 0 {
		b.WriteByte('[')
		for i, s := range t.Defs {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s.String())
		}
		b.WriteByte(']')
	}
	if len(t.Uses) > 0 {
		b.WriteByte('<')
		for i, s := range t.Uses {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s.String())
		}
		b.WriteByte('>')
	}
	if len(t.Children) > 0 {
		b.WriteByte('(')
		for i, c := range t.Children {
			if i > 0 {
				b.WriteByte(',')
			}
			writeTree(b, c)
		}
		b.WriteByte(')')
	}
}

// MixedTree is a term whose leaves may be e-class calls into an existing
// graph. It is a sealed two-variant sum: MixedNode | MixedCall.
type MixedTree interface {
	isMixedTree()
}

// MixedNode is an operator node over mixed children.
type MixedNode struct {
	Op       Op
	Defs     []slots.Slot
	Uses     []slots.Slot
	Children []MixedTree
}

// MixedCall is a leaf referencing an existing e-class.
type MixedCall struct {
	Call EClassCall
}

func (MixedNode) isMixedTree() {}
func (MixedCall) isMixedTree() {}

// NewMixedNode builds a mixed operator node.
func NewMixedNode(op Op, children ...MixedTree) MixedNode {
	return MixedNode{Op: op, Children: children}
}

// Bind sets binder slots, chainable like Tree.Bind.
func (m MixedNode) Bind(defs ...slots.Slot) MixedNode {
	m.Defs = defs
	return m
}

// Use sets use slots, chainable like Tree.Use.
func (m MixedNode) Use(uses ...slots.Slot) MixedNode {
	m.Uses = uses
	return m
}

// NewMixedCall wraps an e-class call as a mixed leaf.
func NewMixedCall(c EClassCall) MixedCall { return MixedCall{Call: c} }

// Mixed embeds a ground tree into the mixed-tree sum.
func (t *Tree) Mixed() MixedTree {
	kids := make([]MixedTree, len(t.Children))
	for i, c := range t.Children {
		kids[i] = c.Mixed()
	}
	return MixedNode{Op: t.Op, Defs: t.Defs, Uses: t.Uses, Children: kids}
}
