// Package saturation drives the rewrite loop: strategies that search all
// rules, aggregate their planned edits into one optimized schedule, apply
// it, and repeat until a fixpoint or a budget runs out.
//
// # Strategies
//
// A Strategy is one step of the loop: Apply takes a graph and the
// strategy's per-run data and returns the next graph (nil when nothing
// changed) plus updated data. Strategies compose:
//
//	NewMaximal(rules)            - apply every current match of every rule
//	NewMaximalWithCaching(rules) - as above, skipping recorded matches
//	NewStochastic(rules, opts)   - weighted sample of matches per step
//	RepeatUntilStable(s)         - iterate s until it reports no change
//	WithIterationLimit(s, n)     - budget of n steps, then a no-op
//	WithTimeout(s, d)            - cancellation token armed on a clock
//	ThenApply(a, b)              - b runs once a is exhausted
//	NewRebase(ex, root, eq)      - restart from the extracted best tree
//
// Run drives a strategy to its fixpoint from an initial graph.
//
// # Scheduling and cancellation
//
// Search runs per rule in parallel, match planning per match in parallel;
// the combined schedule executes as one serialized mutation step. Timeout
// trips a parallel.Token; workers poll it cooperatively, the interrupted
// iteration reports no progress, and the remaining budget becomes zero.
//
// # Configuration
//
// Options is the YAML-loadable bundle of the strategy knobs (iteration
// limit, timeout, parallelism, caching, stochastic sampling) plus an
// injected zap logger; Build assembles the corresponding strategy stack.
package saturation
