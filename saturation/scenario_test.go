package saturation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/egraph"
	"github.com/katalvlaran/foresight/extract"
	"github.com/katalvlaran/foresight/parallel"
	"github.com/katalvlaran/foresight/pattern"
	"github.com/katalvlaran/foresight/rewrite"
	"github.com/katalvlaran/foresight/slots"
)

// End-to-end scenarios over the vocabulary {add, mul, pow, const:n, var}.

func TestScenarioCommutativityOfAdd(t *testing.T) {
	g := egraph.New()
	a, g1, err := g.AddTree(core.NewTree("add", core.NewTree("const:1"), core.NewTree("const:2")))
	require.NoError(t, err)
	b, g2, err := g1.AddTree(core.NewTree("add", core.NewTree("const:2"), core.NewTree("const:1")))
	require.NoError(t, err)
	require.False(t, g2.AreSame(a, b))

	s := NewMaximal([]rewrite.Rule{commute})
	final, _, err := s.Apply(g2, s.InitialData(), parallel.Sequential())
	require.NoError(t, err)
	require.NotNil(t, final, "one iteration suffices")

	one, _ := final.Find(core.NewENode("const:1", nil, nil, nil))
	two, _ := final.Find(core.NewENode("const:2", nil, nil, nil))
	fwd, ok := final.Find(core.NewENode("add", nil, nil, []core.EClassCall{one, two}))
	require.True(t, ok)
	rev, ok := final.Find(core.NewENode("add", nil, nil, []core.EClassCall{two, one}))
	require.True(t, ok)
	assert.True(t, final.AreSame(fwd, rev))
	assert.True(t, final.AreSame(a, b))
}

func TestScenarioDoublingToMul(t *testing.T) {
	// insert mul(const:2, add(var<x>, var<x>)); rule add(a,a) → mul(const:2, a).
	// afterwards mul(const:2, add(x,x)) and mul(const:2, mul(const:2, x))
	// share a class.
	x := slots.Fresh()
	double := rewrite.MustRule("double-to-mul",
		pattern.NewNode("add", pattern.NewVar("a"), pattern.NewVar("a")),
		pattern.NewNode("mul", pattern.NewNode("const:2"), pattern.NewVar("a")),
	)

	g := egraph.New()
	root, g1, err := g.AddTree(core.NewTree("mul",
		core.NewTree("const:2"),
		core.NewTree("add", core.NewTree("var").Use(x), core.NewTree("var").Use(x))))
	require.NoError(t, err)

	final, err := Run(RepeatUntilStable(NewMaximal([]rewrite.Rule{double})), g1, parallel.Sequential())
	require.NoError(t, err)

	classesBefore := final.ClassCount()
	other, final2, err := final.AddTree(core.NewTree("mul",
		core.NewTree("const:2"),
		core.NewTree("mul", core.NewTree("const:2"), core.NewTree("var").Use(x))))
	require.NoError(t, err)
	assert.Equal(t, classesBefore, final2.ClassCount(), "the doubled form must already exist")
	assert.True(t, final2.AreSame(root, other))
}

func TestScenarioAlphaEquivalence(t *testing.T) {
	// lambda(x, var(x)) and lambda(y, var(y)): equal with no rules at all.
	g := egraph.New()
	x, y := slots.Fresh(), slots.Fresh()
	lx, g1, err := g.AddTree(core.NewTree("lambda", core.NewTree("var").Use(x)).Bind(x))
	require.NoError(t, err)
	ly, g2, err := g1.AddTree(core.NewTree("lambda", core.NewTree("var").Use(y)).Bind(y))
	require.NoError(t, err)

	assert.Equal(t, 2, g2.ClassCount(), "lambda class and body class, not four")
	assert.True(t, g2.AreSame(lx, ly))
}

func TestScenarioMatchCachingPreventsRework(t *testing.T) {
	// commutativity is self-confluent: after the first application every
	// further match unites already-equal classes.
	build := func() *egraph.EGraph {
		g := egraph.New()
		_, g1, err := g.AddTree(core.NewTree("add", core.NewTree("const:1"), core.NewTree("const:2")))
		require.NoError(t, err)
		return g1
	}

	cached := NewMaximalWithCaching([]rewrite.Rule{commute})
	gC, err := Run(RepeatUntilStable(cached), build(), parallel.Sequential())
	require.NoError(t, err)

	plain := NewMaximal([]rewrite.Rule{commute})
	gP, err := Run(RepeatUntilStable(plain), build(), parallel.Sequential())
	require.NoError(t, err)

	assert.Equal(t, gP.ClassCount(), gC.ClassCount(), "both modes reach the same fixpoint")

	// stepping the cached strategy by hand until it reports no progress
	// leaves the applied matches in its record
	data := cached.InitialData()
	var ng *egraph.EGraph
	g := build()
	for {
		ng, data, err = cached.Apply(g, data, parallel.Sequential())
		require.NoError(t, err)
		if ng == nil {
			break
		}
		g = ng
	}
	rec := data.(*Applications)
	assert.Greater(t, rec.Count("add-commute"), 0, "applied matches were recorded")
}

func TestScenarioTimeoutCancellation(t *testing.T) {
	// grow cannot saturate; a 50ms budget must still hand back a graph
	// with the remaining budget at zero.
	g := egraph.New()
	_, g1, err := g.AddTree(core.NewTree("pow", core.NewTree("const:2"), core.NewTree("const:10")))
	require.NoError(t, err)

	s := WithTimeout(NewMaximal([]rewrite.Rule{grow}), 50*time.Millisecond)
	data := s.InitialData()
	cur := g1
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.True(t, time.Now().Before(deadline), "the budget must stop the loop")
		ng, nd, err := s.Apply(cur, data, parallel.Sequential())
		require.NoError(t, err)
		data = nd
		if ng == nil {
			break
		}
		cur = ng
	}
	require.NotNil(t, cur)
	// remaining budget is zero: every further step is a no-op
	ng, _, err := s.Apply(cur, data, parallel.Sequential())
	require.NoError(t, err)
	assert.Nil(t, ng)
}

func TestScenarioRebaseShrinksGraph(t *testing.T) {
	// bloat with associativity + commutativity, then rebase onto the
	// extracted best term.
	assoc := rewrite.MustRule("add-assoc",
		pattern.NewNode("add", pattern.NewNode("add", pattern.NewVar("x"), pattern.NewVar("y")), pattern.NewVar("z")),
		pattern.NewNode("add", pattern.NewVar("x"), pattern.NewNode("add", pattern.NewVar("y"), pattern.NewVar("z"))),
	)

	g := egraph.New()
	root, g1, err := g.AddTree(core.NewTree("add",
		core.NewTree("add", core.NewTree("const:1"), core.NewTree("const:2")),
		core.NewTree("const:3")))
	require.NoError(t, err)

	bloated, err := Run(RepeatUntilStable(NewMaximal([]rewrite.Rule{commute, assoc})), g1, parallel.Sequential())
	require.NoError(t, err)
	require.Greater(t, bloated.ClassCount(), 5, "saturation must have bloated the graph")

	rebase := NewRebase(extract.NewBottomUp(nil), root, nil)
	final, err := Run(rebase, bloated, parallel.Sequential())
	require.NoError(t, err)
	assert.Less(t, final.ClassCount(), bloated.ClassCount())
	assert.Equal(t, 5, final.ClassCount(), "one class per extracted tree node")
}
