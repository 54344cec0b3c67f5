// Package schedule: symbols, commands and the schedule builder.
//
// Errors:
//
//	ErrUnboundVirtual - execution met a virtual symbol no addition binds.
package schedule

import (
	"errors"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/slots"
)

// ErrUnboundVirtual indicates a union or child symbol referencing a
// virtual that no earlier addition produced.
var ErrUnboundVirtual = errors.New("schedule: unbound virtual symbol")

// EClassSymbol names an e-class either concretely (Real) or as a plan-time
// placeholder (Virtual). Sealed: exactly these two variants exist.
type EClassSymbol interface {
	isSymbol()
}

// Real is a concrete e-class call.
type Real struct {
	Call core.EClassCall
}

// Virtual is a plan-time placeholder bound by an addition at execution.
type Virtual struct {
	ID uint32
}

func (Real) isSymbol()    {}
func (Virtual) isSymbol() {}

// Node is a planned e-node whose children are symbols.
type Node struct {
	Op   core.Op
	Defs []slots.Slot
	Uses []slots.Slot
	// Children pairs each child symbol with the slot map applied to the
	// resolved call (parameter slots → this node's context). A nil map
	// keeps the resolved call's own argument map.
	Children []Child
}

// Child is one argument position of a planned node.
type Child struct {
	Sym EClassSymbol
	// Rename re-targets the resolved call's argument slots into the
	// node's context; empty keeps them as-is.
	Rename slots.SlotMap
}

// Add is one planned insertion, optionally binding its result to a
// virtual for later batches and unions.
type Add struct {
	Node Node
	Bind *Virtual
}

// Schedule is a staged, replayable description of additions and unions.
// The zero value is the empty schedule.
type Schedule struct {
	Batches [][]Add
	Unions  [][2]EClassSymbol
}

// IsEmpty reports whether the schedule plans no work.
func (s *Schedule) IsEmpty() bool {
	if s == nil {
		return true
	}
	for _, b := range s.Batches {
		if len(b) > 0 {
			return false
		}
	}
	return len(s.Unions) == 0
}

// Builder accumulates a schedule; it allocates virtuals and assigns each
// addition to the earliest batch its children permit.
type Builder struct {
	sched     Schedule
	nextVirt  uint32
	virtBatch map[uint32]int // virtual id → batch that binds it
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{virtBatch: make(map[uint32]int)}
}

// NewVirtual allocates a fresh virtual symbol.
func (b *Builder) NewVirtual() Virtual {
	v := Virtual{ID: b.nextVirt}
	b.nextVirt++
	return v
}

// AddNode plans inserting node and returns the virtual bound to its
// resulting class. The addition lands in the first batch after every
// batch producing one of its child virtuals.
// Complexity: O(children)
func (b *Builder) AddNode(node Node) Virtual {
	v := b.NewVirtual()
	batch := 0
	for _, c := range node.Children {
		if vc, ok := c.Sym.(Virtual); ok {
			if bb, bound := b.virtBatch[vc.ID]; bound && bb+1 > batch {
				batch = bb + 1
			}
		}
	}
	for len(b.sched.Batches) <= batch {
		b.sched.Batches = append(b.sched.Batches, nil)
	}
	b.sched.Batches[batch] = append(b.sched.Batches[batch], Add{Node: node, Bind: &Virtual{ID: v.ID}})
	b.virtBatch[v.ID] = batch
	return v
}

// Union plans uniting two symbols after all additions execute.
func (b *Builder) Union(x, y EClassSymbol) {
	b.sched.Unions = append(b.sched.Unions, [2]EClassSymbol{x, y})
}

// Schedule returns the accumulated schedule.
func (b *Builder) Schedule() *Schedule {
	s := b.sched
	return &s
}

// Merge appends other's work onto s, renumbering other's virtuals so the
// two plans cannot collide. Batches are aligned index-wise (batch i of
// other joins batch i of s), which preserves both plans' data-flow.
// Complexity: O(size of other)
func (s *Schedule) Merge(other *Schedule) *Schedule {
	if other.IsEmpty() {
		return s
	}
	offset := s.maxVirtual() + 1
	out := &Schedule{
		Batches: make([][]Add, max(len(s.Batches), len(other.Batches))),
		Unions:  append([][2]EClassSymbol(nil), s.Unions...),
	}
	for i, b := range s.Batches {
		out.Batches[i] = append([]Add(nil), b...)
	}
	for i, b := range other.Batches {
		for _, a := range b {
			out.Batches[i] = append(out.Batches[i], shiftAdd(a, offset))
		}
	}
	for _, u := range other.Unions {
		out.Unions = append(out.Unions, [2]EClassSymbol{shiftSym(u[0], offset), shiftSym(u[1], offset)})
	}
	return out
}

// maxVirtual returns the largest virtual id mentioned, or -1.
func (s *Schedule) maxVirtual() int64 {
	maxID := int64(-1)
	see := func(sym EClassSymbol) {
		if v, ok := sym.(Virtual); ok && int64(v.ID) > maxID {
			maxID = int64(v.ID)
		}
	}
	for _, b := range s.Batches {
		for _, a := range b {
			if a.Bind != nil {
				see(Virtual{ID: a.Bind.ID})
			}
			for _, c := range a.Node.Children {
				see(c.Sym)
			}
		}
	}
	for _, u := range s.Unions {
		see(u[0])
		see(u[1])
	}
	return maxID
}

func shiftAdd(a Add, offset int64) Add {
	out := a
	if a.Bind != nil {
		out.Bind = &Virtual{ID: uint32(int64(a.Bind.ID) + offset)}
	}
	out.Node.Children = make([]Child, len(a.Node.Children))
	for i, c := range a.Node.Children {
		out.Node.Children[i] = Child{Sym: shiftSym(c.Sym, offset), Rename: c.Rename}
	}
	return out
}

func shiftSym(sym EClassSymbol, offset int64) EClassSymbol {
	if v, ok := sym.(Virtual); ok {
		return Virtual{ID: uint32(int64(v.ID) + offset)}
	}
	return sym
}
