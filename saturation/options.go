// Package saturation: YAML-loadable strategy configuration.
//
// Errors:
//
//	ErrBadParallelism - unrecognized parallelism setting.
package saturation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/foresight/parallel"
	"github.com/katalvlaran/foresight/rewrite"
)

// ErrBadParallelism indicates an unrecognized parallelism setting; valid
// forms are "sequential", "default" and "fixed:N".
var ErrBadParallelism = errors.New("saturation: bad parallelism setting")

// Options is the strategy configuration bundle. Every field has a usable
// zero/default; the struct round-trips through YAML except the logger,
// which is injected programmatically.
//
// Fields:
//
//	IterationLimit - cap on outer iterations; nil = unlimited.
//	Timeout        - wall-clock budget enforced via cancellation; 0 = none.
//	Parallelism    - "sequential" | "fixed:N" | "default".
//	Caching        - record applied matches per rule and skip them.
//	Stochastic     - when set, sample matches instead of applying all.
type Options struct {
	IterationLimit *int            `yaml:"iteration_limit"`
	Timeout        Duration        `yaml:"timeout"`
	Parallelism    string          `yaml:"parallelism"`
	Caching        bool            `yaml:"caching"`
	Stochastic     *StochasticYAML `yaml:"stochastic"`
	Logger         *zap.Logger     `yaml:"-"`
}

// Duration is a time.Duration that round-trips through YAML in the usual
// "250ms" / "2s" notation.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("saturation: parse timeout: %w", err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// StochasticYAML is the serializable subset of StochasticOptions.
type StochasticYAML struct {
	Seed      uint64 `yaml:"seed"`
	BatchSize int    `yaml:"batch_size"`
}

// DefaultOptions returns the defaults: unlimited iterations, no timeout,
// default parallelism, caching off, maximal (non-stochastic) application.
func DefaultOptions() Options {
	return Options{Parallelism: "default"}
}

// LoadOptions parses a YAML options document over the defaults.
func LoadOptions(data []byte) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("saturation: parse options: %w", err)
	}
	return opts, nil
}

func (o *Options) normalize() {
	if o.Parallelism == "" {
		o.Parallelism = "default"
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// ParallelMap builds the configured parallel map.
func (o Options) ParallelMap() (parallel.Map, error) {
	o.normalize()
	switch {
	case o.Parallelism == "sequential":
		return parallel.Sequential(), nil
	case o.Parallelism == "default":
		return parallel.Default(), nil
	case strings.HasPrefix(o.Parallelism, "fixed:"):
		n, err := strconv.Atoi(strings.TrimPrefix(o.Parallelism, "fixed:"))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: %q", ErrBadParallelism, o.Parallelism)
		}
		return parallel.Fixed(n), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadParallelism, o.Parallelism)
	}
}

// Build assembles the strategy stack the options describe: the base
// application strategy (maximal, cached or stochastic), wrapped by the
// iteration limit and the timeout, then repeated until stable.
func (o Options) Build(rules []rewrite.Rule) Strategy {
	o.normalize()
	var base Strategy
	switch {
	case o.Stochastic != nil:
		base = NewStochastic(rules, StochasticOptions{
			Seed:      o.Stochastic.Seed,
			BatchSize: o.Stochastic.BatchSize,
		}, WithLogger(o.Logger))
	case o.Caching:
		base = NewMaximalWithCaching(rules, WithLogger(o.Logger))
	default:
		base = NewMaximal(rules, WithLogger(o.Logger))
	}
	if o.IterationLimit != nil {
		base = WithIterationLimit(base, *o.IterationLimit)
	}
	if o.Timeout > 0 {
		base = WithTimeout(base, time.Duration(o.Timeout))
	}
	return RepeatUntilStable(base)
}
