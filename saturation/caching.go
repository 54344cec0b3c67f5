// Package saturation: maximal rule application with recorded matches.
package saturation

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/foresight/egraph"
	"github.com/katalvlaran/foresight/parallel"
	"github.com/katalvlaran/foresight/rewrite"
	"github.com/katalvlaran/foresight/schedule"
)

// Applications records, per rule, the matches already applied to a graph.
// The record is re-ported whenever the graph changes under it, so a match
// is recognized again even after its calls were canonicalized away.
type Applications struct {
	byRule map[string]map[string]rewrite.Match // rule → match key → match
}

// NewApplications returns an empty record.
func NewApplications() *Applications {
	return &Applications{byRule: make(map[string]map[string]rewrite.Match)}
}

// Seen reports whether the rule already applied this match.
func (a *Applications) Seen(rule string, m rewrite.Match) bool {
	_, ok := a.byRule[rule][m.Key()]
	return ok
}

// Count returns the number of recorded matches for a rule.
func (a *Applications) Count(rule string) int { return len(a.byRule[rule]) }

// record adds matches under a rule, returning a fresh Applications (the
// receiver stays immutable, like the graph snapshots it describes).
func (a *Applications) record(rule string, ms []rewrite.Match) *Applications {
	out := a.clone()
	bucket := out.byRule[rule]
	if bucket == nil {
		bucket = make(map[string]rewrite.Match, len(ms))
		out.byRule[rule] = bucket
	}
	for _, m := range ms {
		bucket[m.Key()] = m
	}
	return out
}

func (a *Applications) clone() *Applications {
	out := NewApplications()
	for rule, bucket := range a.byRule {
		nb := make(map[string]rewrite.Match, len(bucket))
		for k, m := range bucket {
			nb[k] = m
		}
		out.byRule[rule] = nb
	}
	return out
}

// port re-targets every recorded match onto g (parallel per rule),
// preserving set semantics: matches that collapse onto one canonical form
// merge into a single entry.
func (a *Applications) port(g *egraph.EGraph, pm parallel.Map) (*Applications, error) {
	rules := make([]string, 0, len(a.byRule))
	for r := range a.byRule {
		rules = append(rules, r)
	}
	sort.Strings(rules)
	ported, err := parallel.Apply(pm.Child("port"), rules, func(rule string) (map[string]rewrite.Match, error) {
		bucket := a.byRule[rule]
		nb := make(map[string]rewrite.Match, len(bucket))
		for _, m := range bucket {
			pm, err := m.Port(g)
			if err != nil {
				return nil, err
			}
			nb[pm.Key()] = pm
		}
		return nb, nil
	})
	if err != nil {
		return nil, err
	}
	out := NewApplications()
	for i, rule := range rules {
		out.byRule[rule] = ported[i]
	}
	return out, nil
}

// Emptied drops every record.
func (a *Applications) Emptied() *Applications { return NewApplications() }

// NewMaximalWithCaching is NewMaximal with per-rule match recording: a
// match already recorded for its rule is skipped, new matches are
// recorded after each step, and the record is re-ported after every
// union.
func NewMaximalWithCaching(rules []rewrite.Rule, opts ...StrategyOption) Strategy {
	cfg := newStrategyConfig(opts)
	return cachingStrategy{rules: rules, log: cfg.logger}
}

type cachingStrategy struct {
	rules []rewrite.Rule
	log   *zap.Logger
}

func (c cachingStrategy) InitialData() any { return NewApplications() }

func (c cachingStrategy) Apply(g *egraph.EGraph, data any, pm parallel.Map) (*egraph.EGraph, any, error) {
	record := data.(*Applications)
	start := time.Now()

	type planned struct {
		sched   *schedule.Schedule
		applied []rewrite.Match
	}
	plans, err := parallel.Apply(pm.Child("search"), c.rules, func(r rewrite.Rule) (planned, error) {
		matches, err := rewrite.CollectMatches(r.Searcher, g, pm)
		if err != nil {
			return planned{}, err
		}
		fresh := matches[:0]
		for _, m := range matches {
			if !record.Seen(r.Name, m) {
				fresh = append(fresh, m)
			}
		}
		sched, err := r.DelayedForMatches(fresh, g, pm)
		if err != nil {
			return planned{}, err
		}
		return planned{sched: sched, applied: fresh}, nil
	})
	if err != nil {
		return nil, record, err
	}

	combined := &schedule.Schedule{}
	freshTotal := 0
	for _, p := range plans {
		combined = combined.Merge(p.sched)
		freshTotal += len(p.applied)
	}
	combined = combined.Optimized()
	ng, changed, err := combined.Execute(g, pm.Child("execute"))
	if err != nil {
		return nil, record, err
	}

	c.log.Debug("cached saturation step",
		zap.Int("fresh_matches", freshTotal),
		zap.Bool("changed", changed),
		zap.Duration("elapsed", time.Since(start)),
	)
	if !changed && freshTotal == 0 {
		return nil, record, nil
	}

	// record this step's matches, then re-port everything onto the new
	// graph so later lookups compare canonical forms
	next := record
	for i, r := range c.rules {
		if len(plans[i].applied) > 0 {
			next = next.record(r.Name, plans[i].applied)
		}
	}
	next, err = next.port(ng, pm)
	if err != nil {
		return nil, record, err
	}
	if !changed {
		return nil, next, nil
	}
	return ng, next, nil
}
