package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/egraph"
)

func TestExtractSingleton(t *testing.T) {
	g := egraph.New()
	call, g2, err := g.AddTree(core.NewTree("const:1"))
	require.NoError(t, err)

	tr, err := NewBottomUp(nil).Extract(call, g2)
	require.NoError(t, err)
	assert.Equal(t, core.Op("const:1"), tr.Op)
	assert.Equal(t, 1, tr.Size())
}

func TestExtractPicksCheaperNode(t *testing.T) {
	// class holds both add(1,2) and const:3 after a union: the constant
	// is the smaller tree.
	g := egraph.New()
	a, g1, err := g.AddTree(core.NewTree("add", core.NewTree("const:1"), core.NewTree("const:2")))
	require.NoError(t, err)
	c, g2, err := g1.AddTree(core.NewTree("const:3"))
	require.NoError(t, err)
	_, g3, err := g2.Union(a, c)
	require.NoError(t, err)

	tr, err := NewBottomUp(TreeSize).Extract(a, g3)
	require.NoError(t, err)
	assert.Equal(t, core.Op("const:3"), tr.Op)
	assert.Equal(t, 1, tr.Size())
}

func TestExtractCyclicClassStillGrounds(t *testing.T) {
	// f(x)=x union makes the f-class cyclic; the const keeps it grounded.
	g := egraph.New()
	one, g1, err := g.AddTree(core.NewTree("const:1"))
	require.NoError(t, err)
	f, g2, err := g1.AddMixedTree(core.NewMixedNode("f", core.NewMixedCall(one)))
	require.NoError(t, err)
	_, g3, err := g2.Union(one, f)
	require.NoError(t, err)

	tr, err := NewBottomUp(nil).Extract(f, g3)
	require.NoError(t, err)
	assert.Equal(t, core.Op("const:1"), tr.Op, "the finite representative wins")
}

func TestExtractDeterministicTieBreak(t *testing.T) {
	build := func() (*egraph.EGraph, core.EClassCall) {
		g := egraph.New()
		a, g1, err := g.AddTree(core.NewTree("const:1"))
		require.NoError(t, err)
		b, g2, err := g1.AddTree(core.NewTree("const:2"))
		require.NoError(t, err)
		_, g3, err := g2.Union(a, b)
		require.NoError(t, err)
		return g3, a
	}
	g1, c1 := build()
	t1, err := NewBottomUp(nil).Extract(c1, g1)
	require.NoError(t, err)
	g2, c2 := build()
	t2, err := NewBottomUp(nil).Extract(c2, g2)
	require.NoError(t, err)
	assert.Equal(t, t1.Op, t2.Op, "equal costs must break ties identically")
}
