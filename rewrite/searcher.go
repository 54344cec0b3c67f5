// Package rewrite: searchers and their combinators.
//
// Errors:
//
//	ErrUnboundVar - a template references a variable the match lacks.
package rewrite

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/egraph"
	"github.com/katalvlaran/foresight/parallel"
	"github.com/katalvlaran/foresight/pattern"
)

// ErrUnboundVar indicates a target template variable with no binding in
// the match being applied.
var ErrUnboundVar = errors.New("rewrite: unbound pattern variable")

// Match is a successful pattern occurrence; see pattern.Match.
type Match = pattern.Match

// Searcher enumerates matches over a graph snapshot. Yield stops the
// enumeration by returning false; Search reports scanning errors, not
// match absence.
type Searcher interface {
	Search(g *egraph.EGraph, pm parallel.Map, yield func(Match) bool) error
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(g *egraph.EGraph, pm parallel.Map, yield func(Match) bool) error

// Search implements Searcher.
func (f SearcherFunc) Search(g *egraph.EGraph, pm parallel.Map, yield func(Match) bool) error {
	return f(g, pm, yield)
}

// PatternSearcher searches a compiled pattern at every canonical class.
// Matching parallelizes across root classes; matches are yielded serially
// in class-id order, so enumeration stays deterministic.
func PatternSearcher(c *pattern.Compiled) Searcher {
	return SearcherFunc(func(g *egraph.EGraph, pm parallel.Map, yield func(Match) bool) error {
		refs := g.Classes()
		perClass, err := parallel.Apply(pm.Child("match"), refs, func(ref core.EClassRef) ([]Match, error) {
			call, err := g.CanonicalizeRef(ref)
			if err != nil {
				return nil, err
			}
			var out []Match
			c.Run(g, call, func(m *pattern.Match) bool {
				out = append(out, *m)
				return true
			})
			return out, nil
		})
		if err != nil {
			return fmt.Errorf("rewrite: pattern search: %w", err)
		}
		for _, ms := range perClass {
			for _, m := range ms {
				if !yield(m) {
					return nil
				}
			}
		}
		return nil
	})
}

// Filter keeps only matches satisfying pred.
func Filter(s Searcher, pred func(Match) bool) Searcher {
	return SearcherFunc(func(g *egraph.EGraph, pm parallel.Map, yield func(Match) bool) error {
		return s.Search(g, pm, func(m Match) bool {
			if !pred(m) {
				return true
			}
			return yield(m)
		})
	})
}

// MapMatches rewrites each match through f before yielding.
func MapMatches(s Searcher, f func(Match) Match) Searcher {
	return SearcherFunc(func(g *egraph.EGraph, pm parallel.Map, yield func(Match) bool) error {
		return s.Search(g, pm, func(m Match) bool {
			return yield(f(m))
		})
	})
}

// FlatMapMatches expands each match into zero or more matches.
func FlatMapMatches(s Searcher, f func(Match) []Match) Searcher {
	return SearcherFunc(func(g *egraph.EGraph, pm parallel.Map, yield func(Match) bool) error {
		return s.Search(g, pm, func(m Match) bool {
			for _, out := range f(m) {
				if !yield(out) {
					return false
				}
			}
			return true
		})
	})
}

// CollectMatches drains a searcher into a slice.
func CollectMatches(s Searcher, g *egraph.EGraph, pm parallel.Map) ([]Match, error) {
	var out []Match
	err := s.Search(g, pm, func(m Match) bool {
		out = append(out, m)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
