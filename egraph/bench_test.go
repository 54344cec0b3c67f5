package egraph

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/parallel"
)

// chain builds add(const:0, add(const:1, ... add(const:n-1, const:n))).
func chain(n int) *core.Tree {
	t := core.NewTree(core.Op(fmt.Sprintf("const:%d", n)))
	for i := n - 1; i >= 0; i-- {
		t = core.NewTree("add", core.NewTree(core.Op(fmt.Sprintf("const:%d", i))), t)
	}
	return t
}

func BenchmarkAddTree(b *testing.B) {
	tr := chain(64)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := New().AddTree(tr); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReAddIsHashConsHit(b *testing.B) {
	tr := chain(64)
	_, g, err := New().AddTree(tr)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := g.AddTree(tr); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnionWithUpwardMerge(b *testing.B) {
	// two towers over distinct leaves; uniting the leaves cascades up
	build := func() (*EGraph, core.EClassCall, core.EClassCall) {
		g := New()
		a, g1, err := g.AddTree(core.NewTree("const:1"))
		if err != nil {
			b.Fatal(err)
		}
		c, g2, err := g1.AddTree(core.NewTree("const:2"))
		if err != nil {
			b.Fatal(err)
		}
		cur := g2
		la, lb := a, c
		for i := 0; i < 16; i++ {
			la2, ng, err := cur.AddMixedTree(core.NewMixedNode("f", core.NewMixedCall(la)))
			if err != nil {
				b.Fatal(err)
			}
			lb2, ng2, err := ng.AddMixedTree(core.NewMixedNode("f", core.NewMixedCall(lb)))
			if err != nil {
				b.Fatal(err)
			}
			cur, la, lb = ng2, la2, lb2
		}
		return cur, a, c
	}
	g, a, c := build()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := g.Union(a, c); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTryAddManyParallel(b *testing.B) {
	nodes := make([]core.ENode, 256)
	for i := range nodes {
		nodes[i] = core.NewENode(core.Op(fmt.Sprintf("const:%d", i)), nil, nil, nil)
	}
	pm := parallel.Default()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := New().TryAddMany(nodes, pm); err != nil {
			b.Fatal(err)
		}
	}
}
