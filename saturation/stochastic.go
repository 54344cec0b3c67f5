// Package saturation: stochastic rule application.
package saturation

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/foresight/egraph"
	"github.com/katalvlaran/foresight/parallel"
	"github.com/katalvlaran/foresight/rewrite"
	"github.com/katalvlaran/foresight/schedule"
)

// StochasticOptions configures sampled rule application.
//
// Fields:
//
//	Seed      - RNG seed; equal seeds replay equal sampling decisions.
//	BatchSize - matches applied per step (0 normalizes to 1).
//	Priority  - sampling weight per match; nil weighs all matches 1.
type StochasticOptions struct {
	Seed      uint64
	BatchSize int
	Priority  func(rule string, m rewrite.Match) float64
}

func (o *StochasticOptions) normalize() {
	if o.BatchSize <= 0 {
		o.BatchSize = 1
	}
	if o.Priority == nil {
		o.Priority = func(string, rewrite.Match) float64 { return 1 }
	}
}

// NewStochastic returns the strategy that, per step, searches every rule,
// weighted-samples up to BatchSize matches without replacement and
// applies only the sample.
func NewStochastic(rules []rewrite.Rule, sopts StochasticOptions, opts ...StrategyOption) Strategy {
	sopts.normalize()
	cfg := newStrategyConfig(opts)
	return stochasticStrategy{rules: rules, opts: sopts, log: cfg.logger}
}

type stochasticStrategy struct {
	rules []rewrite.Rule
	opts  StochasticOptions
	log   *zap.Logger
}

// InitialData seeds the per-run RNG; the generator state lives in the
// strategy data so consecutive steps continue one stream.
func (s stochasticStrategy) InitialData() any {
	return rand.New(rand.NewPCG(s.opts.Seed, s.opts.Seed^0x9e3779b97f4a7c15))
}

func (s stochasticStrategy) Apply(g *egraph.EGraph, data any, pm parallel.Map) (*egraph.EGraph, any, error) {
	rng := data.(*rand.Rand)
	start := time.Now()

	// 1) gather all matches, rule-tagged (parallel per rule)
	type tagged struct {
		rule   int
		match  rewrite.Match
		weight float64
	}
	perRule, err := parallel.Apply(pm.Child("search"), s.rules, func(r rewrite.Rule) ([]rewrite.Match, error) {
		return rewrite.CollectMatches(r.Searcher, g, pm)
	})
	if err != nil {
		return nil, rng, err
	}
	var pool []tagged
	for ri, ms := range perRule {
		for _, m := range ms {
			w := s.opts.Priority(s.rules[ri].Name, m)
			if w > 0 {
				pool = append(pool, tagged{rule: ri, match: m, weight: w})
			}
		}
	}
	if len(pool) == 0 {
		return nil, rng, nil
	}

	// 2) weighted sampling without replacement
	take := s.opts.BatchSize
	if take > len(pool) {
		take = len(pool)
	}
	picked := make([][]rewrite.Match, len(s.rules))
	for n := 0; n < take; n++ {
		total := 0.0
		for _, t := range pool {
			total += t.weight
		}
		r := rng.Float64() * total
		idx := len(pool) - 1
		for i, t := range pool {
			r -= t.weight
			if r <= 0 {
				idx = i
				break
			}
		}
		sel := pool[idx]
		picked[sel.rule] = append(picked[sel.rule], sel.match)
		pool[idx] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}

	// 3) plan the sample and execute
	combined := &schedule.Schedule{}
	for ri, ms := range picked {
		if len(ms) == 0 {
			continue
		}
		frag, err := s.rules[ri].DelayedForMatches(ms, g, pm)
		if err != nil {
			return nil, rng, err
		}
		combined = combined.Merge(frag)
	}
	ng, changed, err := combined.Optimized().Execute(g, pm.Child("execute"))
	if err != nil {
		return nil, rng, err
	}
	s.log.Debug("stochastic step",
		zap.Int("pool", len(pool)+take),
		zap.Int("sampled", take),
		zap.Bool("changed", changed),
		zap.Duration("elapsed", time.Since(start)),
	)
	if !changed {
		return nil, rng, nil
	}
	return ng, rng, nil
}
