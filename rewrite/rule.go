// Package rewrite: rules — named searcher/applier bundles.
package rewrite

import (
	"fmt"

	"github.com/katalvlaran/foresight/egraph"
	"github.com/katalvlaran/foresight/parallel"
	"github.com/katalvlaran/foresight/pattern"
	"github.com/katalvlaran/foresight/schedule"
)

// RuleApplicationError wraps a failure during match planning or schedule
// construction, carrying the rule's name. It is never recovered locally;
// the enclosing strategy decides whether to abort the iteration.
type RuleApplicationError struct {
	Rule string
	Err  error
}

// Error implements error.
func (e *RuleApplicationError) Error() string {
	return fmt.Sprintf("rewrite: rule %q: %v", e.Rule, e.Err)
}

// Unwrap exposes the underlying failure.
func (e *RuleApplicationError) Unwrap() error { return e.Err }

// Rule bundles a named searcher/applier pair.
type Rule struct {
	Name     string
	Searcher Searcher
	Applier  Applier

	// lhs/rhs are kept when the rule came from NewRule, enabling
	// TryReverse.
	lhs, rhs pattern.Pattern
}

// NewRule compiles lhs and builds the rule lhs → rhs: every occurrence of
// lhs is united with the instantiated rhs.
func NewRule(name string, lhs, rhs pattern.Pattern) (Rule, error) {
	compiled, err := pattern.Compile(lhs)
	if err != nil {
		return Rule{}, fmt.Errorf("rewrite: rule %q: %w", name, err)
	}
	return Rule{
		Name:     name,
		Searcher: PatternSearcher(compiled),
		Applier:  TemplateApplier(rhs),
		lhs:      lhs,
		rhs:      rhs,
	}, nil
}

// MustRule is NewRule, panicking on malformed patterns. For rule tables.
func MustRule(name string, lhs, rhs pattern.Pattern) Rule {
	r, err := NewRule(name, lhs, rhs)
	if err != nil {
		panic(err)
	}
	return r
}

// TryReverse returns the swapped rule rhs → lhs when both sides are plain
// patterns binding the same variables; ok is false otherwise.
func (r Rule) TryReverse() (Rule, bool) {
	if r.lhs == nil || r.rhs == nil {
		return Rule{}, false
	}
	if !sameVars(pattern.Vars(r.lhs), pattern.Vars(r.rhs)) {
		return Rule{}, false
	}
	rev, err := NewRule(r.Name+"⁻¹", r.rhs, r.lhs)
	if err != nil {
		return Rule{}, false
	}
	return rev, true
}

func sameVars(a, b []pattern.Var) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[pattern.Var]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

// Delayed plans "apply every current match of this rule" as one optimized
// schedule without touching the graph.
//
// Steps:
//  1. Collect the matches (parallel across root classes).
//  2. Plan each match's fragment (parallel across matches; appliers are
//     concurrent-safe on distinct matches).
//  3. Merge fragments in match order and optimize.
//
// Complexity: O(matches · template size) plus search.
func (r Rule) Delayed(g *egraph.EGraph, pm parallel.Map) (*schedule.Schedule, error) {
	matches, err := CollectMatches(r.Searcher, g, pm.Child(r.Name))
	if err != nil {
		return nil, &RuleApplicationError{Rule: r.Name, Err: err}
	}
	return r.DelayedForMatches(matches, g, pm)
}

// DelayedForMatches plans a specific match set (used by caching and
// stochastic strategies that pre-filter matches).
func (r Rule) DelayedForMatches(matches []Match, g *egraph.EGraph, pm parallel.Map) (*schedule.Schedule, error) {
	fragments, err := parallel.Apply(pm.Child(r.Name+"/plan"), matches, func(m Match) (*schedule.Schedule, error) {
		b := schedule.NewBuilder()
		if err := r.Applier.Apply(m, g, b); err != nil {
			return nil, err
		}
		return b.Schedule(), nil
	})
	if err != nil {
		return nil, &RuleApplicationError{Rule: r.Name, Err: err}
	}
	combined := &schedule.Schedule{}
	for _, f := range fragments {
		combined = combined.Merge(f)
	}
	return combined.Optimized(), nil
}

// Apply executes every current match of the rule, returning the new
// snapshot and whether anything changed.
func (r Rule) Apply(g *egraph.EGraph, pm parallel.Map) (*egraph.EGraph, bool, error) {
	sched, err := r.Delayed(g, pm)
	if err != nil {
		return nil, false, err
	}
	ng, changed, err := sched.Execute(g, pm)
	if err != nil {
		return nil, false, &RuleApplicationError{Rule: r.Name, Err: err}
	}
	return ng, changed, nil
}
