package egraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/parallel"
	"github.com/katalvlaran/foresight/slots"
)

func TestUnionGroundTerms(t *testing.T) {
	g := New()
	a, g2, err := g.AddTree(core.NewTree("add", constTree("1"), constTree("2")))
	require.NoError(t, err)
	b, g3, err := g2.AddTree(core.NewTree("add", constTree("2"), constTree("1")))
	require.NoError(t, err)
	require.False(t, g3.AreSame(a, b))

	groups, g4, err := g3.Union(a, b)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.True(t, g4.AreSame(a, b))
	assert.Equal(t, g3.ClassCount()-1, g4.ClassCount())

	// the source snapshot still keeps them apart
	assert.False(t, g3.AreSame(a, b))
}

func TestUnionIsIdempotent(t *testing.T) {
	g := New()
	a, g2, err := g.AddTree(constTree("1"))
	require.NoError(t, err)
	b, g3, err := g2.AddTree(constTree("2"))
	require.NoError(t, err)

	_, g4, err := g3.Union(a, b)
	require.NoError(t, err)
	groups, g5, err := g4.Union(a, b)
	require.NoError(t, err)

	assert.Empty(t, groups, "second union must report no merges")
	assert.Equal(t, g4.ClassCount(), g5.ClassCount())
	assert.Same(t, g4, g5, "no-op unions return the receiver snapshot")
}

func TestUpwardMerging(t *testing.T) {
	// union(1, 2) must propagate to f(1) and f(2) by congruence.
	g := New()
	one, g2, err := g.AddTree(constTree("1"))
	require.NoError(t, err)
	two, g3, err := g2.AddTree(constTree("2"))
	require.NoError(t, err)
	f1, g4, err := g3.AddMixedTree(core.NewMixedNode("f", core.NewMixedCall(one)))
	require.NoError(t, err)
	f2, g5, err := g4.AddMixedTree(core.NewMixedNode("f", core.NewMixedCall(two)))
	require.NoError(t, err)
	require.False(t, g5.AreSame(f1, f2))

	groups, g6, err := g5.Union(one, two)
	require.NoError(t, err)
	assert.True(t, g6.AreSame(one, two))
	assert.True(t, g6.AreSame(f1, f2), "congruence must union the users")
	assert.Len(t, groups, 2, "one group for the consts, one for the f-classes")
	assert.Equal(t, 2, g6.ClassCount())
}

func TestUpwardMergingCascades(t *testing.T) {
	// g(f(1)) and g(f(2)) collapse two levels up.
	g := New()
	one, g1, err := g.AddTree(constTree("1"))
	require.NoError(t, err)
	two, g2, err := g1.AddTree(constTree("2"))
	require.NoError(t, err)
	gf1, g3, err := g2.AddMixedTree(core.NewMixedNode("g", core.NewMixedNode("f", core.NewMixedCall(one))))
	require.NoError(t, err)
	gf2, g4, err := g3.AddMixedTree(core.NewMixedNode("g", core.NewMixedNode("f", core.NewMixedCall(two))))
	require.NoError(t, err)

	_, g5, err := g4.Union(one, two)
	require.NoError(t, err)
	assert.True(t, g5.AreSame(gf1, gf2))
	assert.Equal(t, 3, g5.ClassCount(), "const, f, g")
}

func TestUnionManyBatch(t *testing.T) {
	g := New()
	a, g1, err := g.AddTree(constTree("1"))
	require.NoError(t, err)
	b, g2, err := g1.AddTree(constTree("2"))
	require.NoError(t, err)
	c, g3, err := g2.AddTree(constTree("3"))
	require.NoError(t, err)

	groups, g4, err := g3.UnionMany([][2]core.EClassCall{{a, b}, {b, c}}, parallel.Sequential())
	require.NoError(t, err)
	require.Len(t, groups, 1, "transitive unions collapse into one group")
	assert.True(t, g4.AreSame(a, c))
	assert.Equal(t, 1, g4.ClassCount())
}

func TestSelfUnionAbsorbsPermutation(t *testing.T) {
	// pair<x,y> united with pair<y,x> teaches the class its swap symmetry.
	g := New()
	x, y := slots.Fresh(), slots.Fresh()
	call, g2, err := g.AddTree(core.NewTree("pair").Use(x, y))
	require.NoError(t, err)

	swapped := call.Rename(slots.FromPairs([2]slots.Slot{x, y}, [2]slots.Slot{y, x}))
	require.False(t, g2.AreSame(call, swapped))

	groups, g3, err := g2.Union(call, swapped)
	require.NoError(t, err)
	assert.NotEmpty(t, groups, "permutation absorption counts as a merge")
	assert.True(t, g3.AreSame(call, swapped))
	assert.Equal(t, g2.ClassCount(), g3.ClassCount(), "no class disappears")

	// parameters survive: the symmetry is a permutation, not redundancy
	c, err := g3.CanonicalizeRef(call.Ref)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Args.Len())
}

func TestSelfUnionDropsRedundantParameter(t *testing.T) {
	// var<x> united with var<y>: the class cannot depend on its slot.
	g := New()
	x, y := slots.Fresh(), slots.Fresh()
	vx, g2, err := g.AddTree(core.NewTree("var").Use(x))
	require.NoError(t, err)
	vy := vx.Rename(slots.FromPairs([2]slots.Slot{x, y}))
	require.False(t, g2.AreSame(vx, vy))

	_, g3, err := g2.Union(vx, vy)
	require.NoError(t, err)
	assert.True(t, g3.AreSame(vx, vy))

	c, err := g3.CanonicalizeRef(vx.Ref)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Args.Len(), "the disagreeing parameter becomes redundant")
}

func TestUnionPicksDeterministicRepresentative(t *testing.T) {
	build := func() (*EGraph, core.EClassCall, core.EClassCall) {
		g := New()
		a, g1, err := g.AddTree(constTree("1"))
		require.NoError(t, err)
		b, g2, err := g1.AddTree(constTree("2"))
		require.NoError(t, err)
		return g2, a, b
	}
	g1, a1, b1 := build()
	_, r1, err := g1.Union(a1, b1)
	require.NoError(t, err)
	g2, a2, b2 := build()
	_, r2, err := g2.Union(b2, a2)
	require.NoError(t, err)

	ca1, err := r1.Canonicalize(a1)
	require.NoError(t, err)
	ca2, err := r2.Canonicalize(a2)
	require.NoError(t, err)
	assert.Equal(t, ca1.Ref.ID(), ca2.Ref.ID(), "representative must not depend on pair order")
}

func TestUnionUnknownRefFails(t *testing.T) {
	g := New()
	a, g2, err := g.AddTree(constTree("1"))
	require.NoError(t, err)
	ghost := core.Call(core.NewEClassRef(99), slots.NewSlotMap())
	_, _, err = g2.Union(a, ghost)
	assert.ErrorIs(t, err, ErrUnknownRef)
}
