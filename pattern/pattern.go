// Package pattern: the pattern language and compiled form.
//
// Errors:
//
//	ErrNilPattern        - a pattern tree contains a nil child.
//	ErrNoMatchingNode    - diagnostic: no candidate node fit a BindNode.
//	ErrInconsistentVars  - diagnostic: a Compare found different classes.
package pattern

import (
	"errors"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/slots"
)

// Sentinel errors. The two machine errors surface only from Diagnose;
// ordinary search prunes failed branches silently.
var (
	// ErrNilPattern indicates a nil child inside a pattern tree.
	ErrNilPattern = errors.New("pattern: nil pattern")

	// ErrNoMatchingNode indicates a class held no node fitting a BindNode.
	ErrNoMatchingNode = errors.New("pattern: no matching node")

	// ErrInconsistentVars indicates a repeated variable bound two
	// different classes.
	ErrInconsistentVars = errors.New("pattern: inconsistent variable bindings")
)

// Var names a pattern variable.
type Var string

// Pattern is a term with holes. Sealed: VarPattern | NodePattern.
type Pattern interface {
	isPattern()
}

// VarPattern matches any e-class call and binds it to Name.
type VarPattern struct {
	Name Var
}

// NodePattern matches nodes with the given operator, arity and slot
// positions. Defs/Uses hold pattern slots: each binds the actual slot at
// its position, and repeated pattern slots must bind equal actual slots.
type NodePattern struct {
	Op       core.Op
	Defs     []slots.Slot
	Uses     []slots.Slot
	Children []Pattern
}

func (VarPattern) isPattern()  {}
func (NodePattern) isPattern() {}

// NewVar builds a variable pattern.
func NewVar(name Var) VarPattern { return VarPattern{Name: name} }

// NewNode builds a node pattern over the given children.
func NewNode(op core.Op, children ...Pattern) NodePattern {
	return NodePattern{Op: op, Children: children}
}

// Bind sets the pattern's binder slots, chainable.
func (p NodePattern) Bind(defs ...slots.Slot) NodePattern {
	p.Defs = defs
	return p
}

// Use sets the pattern's use slots, chainable.
func (p NodePattern) Use(uses ...slots.Slot) NodePattern {
	p.Uses = uses
	return p
}

// Vars returns the distinct variables of p in first-occurrence order.
func Vars(p Pattern) []Var {
	var out []Var
	seen := map[Var]struct{}{}
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch t := p.(type) {
		case VarPattern:
			if _, dup := seen[t.Name]; !dup {
				seen[t.Name] = struct{}{}
				out = append(out, t.Name)
			}
		case NodePattern:
			for _, c := range t.Children {
				walk(c)
			}
		}
	}
	walk(p)
	return out
}

// Slots returns the distinct pattern slots of p, sorted.
func Slots(p Pattern) []slots.Slot {
	var out []slots.Slot
	var walk func(Pattern)
	walk = func(p Pattern) {
		if t, ok := p.(NodePattern); ok {
			out = append(out, t.Defs...)
			out = append(out, t.Uses...)
			for _, c := range t.Children {
				walk(c)
			}
		}
	}
	walk(p)
	return slots.SortedSet(out)
}

// Instruction is one machine step. Sealed: BindNode | BindVar | Compare.
type Instruction interface {
	isInstruction()
}

// BindNode enumerates the nodes of the class in Reg whose operator is Op,
// whose arity is ArgCount and whose slot positions agree with the
// already-established bindings; each candidate binds its slots and pushes
// its child calls onto fresh registers.
type BindNode struct {
	Reg      int
	Op       core.Op
	Defs     []slots.Slot
	Uses     []slots.Slot
	ArgCount int
}

// BindVar binds variable Var to the call in Reg.
type BindVar struct {
	Reg int
	Var Var
}

// Compare succeeds iff the calls in registers A and B denote the same
// class.
type Compare struct {
	A, B int
}

func (BindNode) isInstruction() {}
func (BindVar) isInstruction()  {}
func (Compare) isInstruction()  {}

// EffectSummary is a compiled pattern's static resource footprint, used
// to size pooled machine states.
type EffectSummary struct {
	Registers int // register file capacity, root included
	Vars      int // distinct pattern variables
	Slots     int // distinct pattern slots
	Nodes     int // BindNode instructions (bound-node list capacity)
}
