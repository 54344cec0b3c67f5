// Package saturation: rebase — restart from the extracted best term.
package saturation

import (
	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/egraph"
	"github.com/katalvlaran/foresight/extract"
	"github.com/katalvlaran/foresight/parallel"
)

// TreeEquivalence decides whether two extracted trees count as the same
// result; Rebase skips the restart when they do.
type TreeEquivalence func(a, b *core.Tree) bool

// NewRebase returns the strategy that extracts the lowest-cost tree
// rooted at root and, when it differs from the previously extracted tree
// under equiv, replaces the graph with a fresh one holding only that
// tree. A nil equiv compares trees structurally.
func NewRebase(ex extract.Extractor, root core.EClassCall, equiv TreeEquivalence) Strategy {
	if equiv == nil {
		equiv = func(a, b *core.Tree) bool { return a.Equal(b) }
	}
	return rebaseStrategy{ex: ex, root: root, equiv: equiv}
}

type rebaseStrategy struct {
	ex    extract.Extractor
	root  core.EClassCall
	equiv TreeEquivalence
}

type rebaseData struct {
	root core.EClassCall // re-targeted after every rebase
	last *core.Tree
}

func (r rebaseStrategy) InitialData() any {
	return rebaseData{root: r.root}
}

func (r rebaseStrategy) Apply(g *egraph.EGraph, data any, _ parallel.Map) (*egraph.EGraph, any, error) {
	d := data.(rebaseData)
	tree, err := r.ex.Extract(d.root, g)
	if err != nil {
		return nil, d, err
	}
	if d.last != nil && r.equiv(d.last, tree) {
		return nil, d, nil // the best term is stable: nothing to restart
	}
	call, ng, err := g.Emptied().AddTree(tree)
	if err != nil {
		return nil, d, err
	}
	return ng, rebaseData{root: call, last: tree}, nil
}
