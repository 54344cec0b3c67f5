// Package parallel: Map variants and the order-preserving Apply helper.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Map schedules n independent work items. Implementations must invoke f
// for every index in [0, n) exactly once (unless an item fails or the map
// is cancelled) and must not retain f after Run returns.
type Map interface {
	// Run executes f(0..n-1), returning the first error encountered.
	Run(n int, f func(i int) error) error

	// Child derives a map labeled label under this map's label path. The
	// label names a pipeline stage; it is carried along, not reported.
	Child(label string) Map

	// Cancelable derives a map that polls tok between items and aborts
	// with ErrCanceled once tripped.
	Cancelable(tok *Token) Map
}

// Apply runs f over in with m, preserving input order in the output.
// Complexity: O(len(in)) invocations of f, scheduled by m.
func Apply[I, O any](m Map, in []I, f func(I) (O, error)) ([]O, error) {
	out := make([]O, len(in))
	err := m.Run(len(in), func(i int) error {
		o, err := f(in[i])
		if err != nil {
			return err
		}
		out[i] = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// seqMap runs everything on the calling goroutine.
type seqMap struct {
	label string
	tok   *Token
}

// Sequential returns the single-goroutine Map.
func Sequential() Map { return &seqMap{label: "root"} }

func (m *seqMap) Run(n int, f func(i int) error) error {
	for i := 0; i < n; i++ {
		if err := m.tok.Poll(); err != nil {
			return err
		}
		if err := f(i); err != nil {
			return err
		}
	}
	return nil
}

func (m *seqMap) Child(label string) Map {
	return &seqMap{label: m.label + "/" + label, tok: m.tok}
}

func (m *seqMap) Cancelable(tok *Token) Map {
	return &seqMap{label: m.label, tok: merged(m.tok, tok)}
}

// poolMap fans items out to a bounded worker pool.
type poolMap struct {
	label   string
	workers int
	tok     *Token
}

// Fixed returns a Map backed by a pool of exactly threads workers.
// threads < 1 is normalized to 1.
func Fixed(threads int) Map {
	if threads < 1 {
		threads = 1
	}
	return &poolMap{label: "root", workers: threads}
}

// Default returns the work-sharing Map sized to the machine (GOMAXPROCS).
func Default() Map {
	return &poolMap{label: "root", workers: runtime.GOMAXPROCS(0)}
}

func (m *poolMap) Run(n int, f func(i int) error) error {
	if n == 0 {
		return nil
	}
	// small batches are not worth the goroutine fan-out
	if n == 1 || m.workers == 1 {
		return (&seqMap{label: m.label, tok: m.tok}).Run(n, f)
	}
	var eg errgroup.Group
	eg.SetLimit(m.workers)
	for i := 0; i < n; i++ {
		if err := m.tok.Poll(); err != nil {
			_ = eg.Wait() // drain in-flight workers before reporting
			return err
		}
		i := i
		eg.Go(func() error {
			if err := m.tok.Poll(); err != nil {
				return err
			}
			return f(i)
		})
	}
	return eg.Wait()
}

func (m *poolMap) Child(label string) Map {
	return &poolMap{label: m.label + "/" + label, workers: m.workers, tok: m.tok}
}

func (m *poolMap) Cancelable(tok *Token) Map {
	return &poolMap{label: m.label, workers: m.workers, tok: merged(m.tok, tok)}
}

// merged chains two tokens: the derived map honors both.
func merged(a, b *Token) *Token {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		t := NewToken()
		t.chain = []*Token{a, b}
		return t
	}
}
