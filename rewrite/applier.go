// Package rewrite: appliers and template instantiation.
package rewrite

import (
	"fmt"

	"github.com/katalvlaran/foresight/egraph"
	"github.com/katalvlaran/foresight/pattern"
	"github.com/katalvlaran/foresight/schedule"
	"github.com/katalvlaran/foresight/slots"
)

// Applier plans one match's edits into a schedule builder. Implementations
// must be safe for concurrent calls on distinct matches of one snapshot.
type Applier interface {
	Apply(m Match, g *egraph.EGraph, b *schedule.Builder) error
}

// ApplierFunc adapts a function to the Applier interface.
type ApplierFunc func(m Match, g *egraph.EGraph, b *schedule.Builder) error

// Apply implements Applier.
func (f ApplierFunc) Apply(m Match, g *egraph.EGraph, b *schedule.Builder) error {
	return f(m, g, b)
}

// FilterApplier applies inner only to matches satisfying pred.
func FilterApplier(inner Applier, pred func(Match) bool) Applier {
	return ApplierFunc(func(m Match, g *egraph.EGraph, b *schedule.Builder) error {
		if !pred(m) {
			return nil
		}
		return inner.Apply(m, g, b)
	})
}

// MapApplier pre-adapts the match before handing it to inner.
func MapApplier(inner Applier, f func(Match) Match) Applier {
	return ApplierFunc(func(m Match, g *egraph.EGraph, b *schedule.Builder) error {
		return inner.Apply(f(m), g, b)
	})
}

// FlatMapApplier expands one match into many and applies inner to each.
func FlatMapApplier(inner Applier, f func(Match) []Match) Applier {
	return ApplierFunc(func(m Match, g *egraph.EGraph, b *schedule.Builder) error {
		for _, out := range f(m) {
			if err := inner.Apply(out, g, b); err != nil {
				return err
			}
		}
		return nil
	})
}

// TemplateApplier instantiates a target pattern with the match's variable
// and slot bindings, then unions the result with the match root. Pattern
// slots the match did not bind (new binders introduced by the target) get
// fresh slots, one per slot per match.
func TemplateApplier(target pattern.Pattern) Applier {
	return ApplierFunc(func(m Match, g *egraph.EGraph, b *schedule.Builder) error {
		sub := newSlotSub(m.Slots)
		top, err := plan(target, m, b, sub)
		if err != nil {
			return err
		}
		b.Union(schedule.Real{Call: m.Root}, top)
		return nil
	})
}

// slotSub resolves target pattern slots: bound slots through the match,
// unbound ones to fresh slots shared across the template.
type slotSub struct {
	bound slots.SlotMap
	fresh map[slots.Slot]slots.Slot
}

func newSlotSub(bound slots.SlotMap) *slotSub {
	return &slotSub{bound: bound, fresh: make(map[slots.Slot]slots.Slot)}
}

func (s *slotSub) apply(p slots.Slot) slots.Slot {
	if v, ok := s.bound.Get(p); ok {
		return v
	}
	if v, ok := s.fresh[p]; ok {
		return v
	}
	f := slots.Fresh()
	s.fresh[p] = f
	return f
}

func (s *slotSub) applyAll(ps []slots.Slot) []slots.Slot {
	if len(ps) == 0 {
		return nil
	}
	out := make([]slots.Slot, len(ps))
	for i, p := range ps {
		out[i] = s.apply(p)
	}
	return out
}

// plan recursively turns a target pattern into schedule additions and
// returns the symbol naming its class.
func plan(p pattern.Pattern, m Match, b *schedule.Builder, sub *slotSub) (schedule.EClassSymbol, error) {
	switch t := p.(type) {
	case pattern.VarPattern:
		call, ok := m.Vars[t.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnboundVar, t.Name)
		}
		return schedule.Real{Call: call}, nil
	case pattern.NodePattern:
		children := make([]schedule.Child, len(t.Children))
		for i, c := range t.Children {
			sym, err := plan(c, m, b, sub)
			if err != nil {
				return nil, err
			}
			children[i] = schedule.Child{Sym: sym}
		}
		v := b.AddNode(schedule.Node{
			Op:       t.Op,
			Defs:     sub.applyAll(t.Defs),
			Uses:     sub.applyAll(t.Uses),
			Children: children,
		})
		return v, nil
	default:
		return nil, pattern.ErrNilPattern
	}
}
