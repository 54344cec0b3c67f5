// Package saturation: maximal rule application.
package saturation

import (
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/foresight/egraph"
	"github.com/katalvlaran/foresight/parallel"
	"github.com/katalvlaran/foresight/rewrite"
	"github.com/katalvlaran/foresight/schedule"
)

// NewMaximal returns the strategy that, per step, searches every rule,
// aggregates all planned edits into one optimized schedule and executes
// it. A step with an unchanged graph reports no progress.
func NewMaximal(rules []rewrite.Rule, opts ...StrategyOption) Strategy {
	cfg := newStrategyConfig(opts)
	return maximalStrategy{rules: rules, log: cfg.logger}
}

// StrategyOption configures the built-in strategies.
type StrategyOption func(*strategyConfig)

type strategyConfig struct {
	logger *zap.Logger
}

func newStrategyConfig(opts []StrategyOption) strategyConfig {
	cfg := strategyConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger attaches a structured logger; iteration statistics are
// logged at debug level.
func WithLogger(l *zap.Logger) StrategyOption {
	return func(c *strategyConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

type maximalStrategy struct {
	rules []rewrite.Rule
	log   *zap.Logger
}

func (m maximalStrategy) InitialData() any { return nil }

// Apply performs one search-plan-execute step across all rules.
//
// Steps:
//  1. Per rule (parallel): search and plan "apply every match".
//  2. Merge the per-rule schedules deterministically, optimize.
//  3. Execute the combined schedule as one serialized mutation.
//
// Complexity: search-bound; execution touches only the planned region.
func (m maximalStrategy) Apply(g *egraph.EGraph, _ any, pm parallel.Map) (*egraph.EGraph, any, error) {
	start := time.Now()
	combined, err := delayedAll(m.rules, g, pm)
	if err != nil {
		return nil, nil, err
	}
	ng, changed, err := combined.Execute(g, pm.Child("execute"))
	if err != nil {
		return nil, nil, err
	}
	stats := combined.Summarize()
	m.log.Debug("saturation step",
		zap.Int("rules", len(m.rules)),
		zap.Int("planned_adds", stats.Additions),
		zap.Int("planned_unions", stats.Unions),
		zap.Int("classes_before", g.ClassCount()),
		zap.Int("classes_after", ng.ClassCount()),
		zap.Bool("changed", changed),
		zap.Duration("elapsed", time.Since(start)),
	)
	if !changed {
		return nil, nil, nil
	}
	return ng, nil, nil
}

// delayedAll plans every rule in parallel and merges the fragments in
// rule order.
func delayedAll(rules []rewrite.Rule, g *egraph.EGraph, pm parallel.Map) (*schedule.Schedule, error) {
	fragments, err := parallel.Apply(pm.Child("search"), rules, func(r rewrite.Rule) (*schedule.Schedule, error) {
		return r.Delayed(g, pm)
	})
	if err != nil {
		return nil, err
	}
	combined := &schedule.Schedule{}
	for _, f := range fragments {
		combined = combined.Merge(f)
	}
	return combined.Optimized(), nil
}
