package egraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/foresight/analysis"
	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/slots"
)

// opSet is a toy semilattice: the set of operators a class can be built
// from. Join is set union (commutative, associative, idempotent); Rename
// is the identity since the fact carries no slots.
type opSet struct{}

func (opSet) Make(node core.ENode, children []analysis.Value) analysis.Value {
	out := map[core.Op]struct{}{node.Op: {}}
	for _, c := range children {
		for op := range asOps(c) {
			out[op] = struct{}{}
		}
	}
	return out
}

func (opSet) Join(a, b analysis.Value) analysis.Value {
	out := map[core.Op]struct{}{}
	for op := range asOps(a) {
		out[op] = struct{}{}
	}
	for op := range asOps(b) {
		out[op] = struct{}{}
	}
	return out
}

func (opSet) Rename(v analysis.Value, _ slots.SlotMap) analysis.Value { return v }

func asOps(v analysis.Value) map[core.Op]struct{} {
	if v == nil {
		return nil
	}
	return v.(map[core.Op]struct{})
}

func TestAnalysisMaintainedOnAdd(t *testing.T) {
	g := New(WithAnalysis(opSet{}))
	call, g1, err := g.AddTree(core.NewTree("add", core.NewTree("const:1"), core.NewTree("const:2")))
	require.NoError(t, err)

	v, ok := g1.Facts().Get(call.Ref)
	require.True(t, ok, "add must seed a fact")
	ops := asOps(v)
	assert.Contains(t, ops, core.Op("add"))
	assert.Contains(t, ops, core.Op("const:1"))
	assert.Contains(t, ops, core.Op("const:2"))
}

func TestAnalysisJoinedOnUnion(t *testing.T) {
	g := New(WithAnalysis(opSet{}))
	a, g1, err := g.AddTree(core.NewTree("const:1"))
	require.NoError(t, err)
	b, g2, err := g1.AddTree(core.NewTree("const:2"))
	require.NoError(t, err)

	_, g3, err := g2.Union(a, b)
	require.NoError(t, err)
	merged, err := g3.Canonicalize(a)
	require.NoError(t, err)
	v, ok := g3.Facts().Get(merged.Ref)
	require.True(t, ok)
	ops := asOps(v)
	assert.Contains(t, ops, core.Op("const:1"))
	assert.Contains(t, ops, core.Op("const:2"))

	// the retired ref keeps no separate fact
	other := a.Ref
	if merged.Ref == a.Ref {
		other = b.Ref
	}
	_, stale := g3.Facts().Get(other)
	assert.False(t, stale)
}

func TestEmptiedKeepsLattice(t *testing.T) {
	g := New(WithAnalysis(opSet{}))
	_, g1, err := g.AddTree(core.NewTree("const:1"))
	require.NoError(t, err)
	e := g1.Emptied()
	assert.Equal(t, 0, e.ClassCount())
	assert.NotNil(t, e.Analysis(), "configuration survives Emptied")
}
