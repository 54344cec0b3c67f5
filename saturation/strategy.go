// Package saturation: the Strategy contract and composable wrappers.
package saturation

import (
	"errors"
	"time"

	"github.com/katalvlaran/foresight/egraph"
	"github.com/katalvlaran/foresight/parallel"
)

// Strategy is one step of the saturation loop. Apply returns the next
// graph (nil when the step made no progress) and the strategy's updated
// per-run data. Data starts from InitialData and is threaded through by
// the driver; strategies themselves stay stateless and reusable.
type Strategy interface {
	InitialData() any
	Apply(g *egraph.EGraph, data any, pm parallel.Map) (*egraph.EGraph, any, error)
}

// Run drives s from g until a step reports no progress, returning the
// final graph.
func Run(s Strategy, g *egraph.EGraph, pm parallel.Map) (*egraph.EGraph, error) {
	data := s.InitialData()
	for {
		ng, nd, err := s.Apply(g, data, pm)
		if err != nil {
			return g, err
		}
		if ng == nil {
			return g, nil
		}
		g, data = ng, nd
	}
}

// RepeatUntilStable returns a strategy that, per Apply, iterates inner to
// its fixpoint. It reports no progress iff the very first inner step
// reported none.
func RepeatUntilStable(inner Strategy) Strategy {
	return repeatStrategy{inner: inner}
}

type repeatStrategy struct {
	inner Strategy
}

func (r repeatStrategy) InitialData() any { return r.inner.InitialData() }

func (r repeatStrategy) Apply(g *egraph.EGraph, data any, pm parallel.Map) (*egraph.EGraph, any, error) {
	progressed := false
	for {
		ng, nd, err := r.inner.Apply(g, data, pm)
		if err != nil {
			return nil, data, err
		}
		if ng == nil {
			if !progressed {
				return nil, nd, nil
			}
			return g, nd, nil
		}
		g, data = ng, nd
		progressed = true
	}
}

// WithIterationLimit caps inner at n steps; once spent, the strategy is a
// no-op.
func WithIterationLimit(inner Strategy, n int) Strategy {
	return limitStrategy{inner: inner, limit: n}
}

type limitStrategy struct {
	inner Strategy
	limit int
}

type limitData struct {
	inner     any
	remaining int
}

func (l limitStrategy) InitialData() any {
	return limitData{inner: l.inner.InitialData(), remaining: l.limit}
}

func (l limitStrategy) Apply(g *egraph.EGraph, data any, pm parallel.Map) (*egraph.EGraph, any, error) {
	d := data.(limitData)
	if d.remaining <= 0 {
		return nil, d, nil
	}
	ng, nd, err := l.inner.Apply(g, d.inner, pm)
	if err != nil {
		return nil, d, err
	}
	return ng, limitData{inner: nd, remaining: d.remaining - 1}, nil
}

// WithTimeout arms a cancellation token on the first step; a tripped
// token makes the current step report no progress and zeroes the
// remaining budget (every later step is a no-op).
func WithTimeout(inner Strategy, d time.Duration) Strategy {
	return timeoutStrategy{inner: inner, budget: d}
}

type timeoutStrategy struct {
	inner  Strategy
	budget time.Duration
}

type timeoutData struct {
	inner any
	token *parallel.Token
}

func (t timeoutStrategy) InitialData() any {
	return timeoutData{inner: t.inner.InitialData()}
}

func (t timeoutStrategy) Apply(g *egraph.EGraph, data any, pm parallel.Map) (*egraph.EGraph, any, error) {
	d := data.(timeoutData)
	if d.token == nil {
		d.token = parallel.NewTimeoutToken(t.budget)
	}
	if d.token.Tripped() {
		return nil, d, nil // budget exhausted: permanent no-op
	}
	ng, nd, err := t.inner.Apply(g, d.inner, pm.Cancelable(d.token))
	if err != nil {
		if errors.Is(err, parallel.ErrCanceled) {
			// the interrupted iteration counts as no progress
			return nil, timeoutData{inner: d.inner, token: d.token}, nil
		}
		return nil, d, err
	}
	return ng, timeoutData{inner: nd, token: d.token}, nil
}

// ThenApply runs a to exhaustion, then b on its result.
func ThenApply(a, b Strategy) Strategy {
	return seqStrategy{a: a, b: b}
}

type seqStrategy struct {
	a, b Strategy
}

type seqData struct {
	phase  int // 0 = a, 1 = b
	da, db any
}

func (s seqStrategy) InitialData() any {
	return seqData{da: s.a.InitialData(), db: s.b.InitialData()}
}

func (s seqStrategy) Apply(g *egraph.EGraph, data any, pm parallel.Map) (*egraph.EGraph, any, error) {
	d := data.(seqData)
	if d.phase == 0 {
		ng, nd, err := s.a.Apply(g, d.da, pm)
		if err != nil {
			return nil, d, err
		}
		if ng != nil {
			return ng, seqData{phase: 0, da: nd, db: d.db}, nil
		}
		d = seqData{phase: 1, da: nd, db: d.db}
		// fall through: b gets its first step within this Apply, so the
		// driver does not mistake the hand-over for a fixpoint
	}
	ng, nd, err := s.b.Apply(g, d.db, pm)
	if err != nil {
		return nil, d, err
	}
	if ng == nil {
		return nil, seqData{phase: 1, da: d.da, db: nd}, nil
	}
	return ng, seqData{phase: 1, da: d.da, db: nd}, nil
}
