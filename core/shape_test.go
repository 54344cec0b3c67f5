package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/foresight/slots"
)

func TestShapeNumbersSlotsInEncounterOrder(t *testing.T) {
	x, y := slots.Fresh(), slots.Fresh()
	// lambda-like node: binds x, uses y then x.
	n := NewENode("lam", []slots.Slot{x}, []slots.Slot{y, x}, nil)

	sc := n.Shape()
	sn := sc.Shape.Node()
	require.Equal(t, []slots.Slot{slots.Numeric(0)}, sn.Defs, "first encountered slot becomes $0")
	require.Equal(t, []slots.Slot{slots.Numeric(1), slots.Numeric(0)}, sn.Uses)

	// inverse renaming maps numerics back to the originals
	assert.Equal(t, x, sc.Renaming.Apply(slots.Numeric(0)))
	assert.Equal(t, y, sc.Renaming.Apply(slots.Numeric(1)))
}

func TestShapeRoundTrip(t *testing.T) {
	// shape.Node().Rename(renaming) reconstructs the source node.
	a, b := slots.Fresh(), slots.Fresh()
	call := Call(NewEClassRef(7), slots.FromPairs([2]slots.Slot{slots.Numeric(0), b}))
	n := NewENode("f", nil, []slots.Slot{a}, []EClassCall{call})

	sc := n.Shape()
	back := sc.Node()
	require.True(t, n.Equal(back), "round trip: got %v want %v", back, n)
}

func TestAlphaEquivalentNodesShareShape(t *testing.T) {
	x, y := slots.Fresh(), slots.Fresh()
	n1 := NewENode("lam", []slots.Slot{x}, []slots.Slot{x}, nil)
	n2 := NewENode("lam", []slots.Slot{y}, []slots.Slot{y}, nil)

	assert.Equal(t, n1.Shape().Shape.Key(), n2.Shape().Shape.Key(),
		"alpha-equivalent binders must normalize to one shape")
}

func TestDistinctStructureDistinctShape(t *testing.T) {
	x, y := slots.Fresh(), slots.Fresh()
	// f(x, x) vs f(x, y): sharing matters.
	same := NewENode("f", nil, []slots.Slot{x, x}, nil)
	diff := NewENode("f", nil, []slots.Slot{x, y}, nil)

	assert.NotEqual(t, same.Shape().Shape.Key(), diff.Shape().Shape.Key())
}

func TestShapeFingerprintMatchesKeyEquality(t *testing.T) {
	x := slots.Fresh()
	n := NewENode("g", nil, []slots.Slot{x}, nil)
	s1, s2 := n.Shape().Shape, n.Shape().Shape
	assert.Equal(t, s1.Fingerprint(), s2.Fingerprint())
}

func TestRenameIsSimultaneous(t *testing.T) {
	// swap $0 and $1 — both rewrites must apply to the original slots.
	n := NewENode("f", nil, []slots.Slot{slots.Numeric(0), slots.Numeric(1)}, nil)
	swap := slots.FromPairs(
		[2]slots.Slot{slots.Numeric(0), slots.Numeric(1)},
		[2]slots.Slot{slots.Numeric(1), slots.Numeric(0)},
	)
	out := n.Rename(swap)
	assert.Equal(t, []slots.Slot{slots.Numeric(1), slots.Numeric(0)}, out.Uses)
}

func TestNodeEquality(t *testing.T) {
	x := slots.Fresh()
	a := NewENode("f", nil, []slots.Slot{x}, nil)
	b := NewENode("f", nil, []slots.Slot{x}, nil)
	c := NewENode("g", nil, []slots.Slot{x}, nil)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
