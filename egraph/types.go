// Package egraph: store types, sentinel errors and constructors.
//
// Errors:
//
//	ErrUnknownRef    - lookup on a ref this graph never allocated.
//	ErrMalformedCall - a call whose argument map does not cover the
//	                   class's parameter slots.
package egraph

import (
	"errors"
	"strconv"

	"github.com/katalvlaran/foresight/analysis"
	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/slots"
)

// Sentinel errors for store operations.
var (
	// ErrUnknownRef indicates a lookup on a ref not owned by this graph.
	ErrUnknownRef = errors.New("egraph: unknown e-class ref")

	// ErrMalformedCall indicates an argument map that does not cover the
	// canonical parameter slots. Well-formed callers never see it.
	ErrMalformedCall = errors.New("egraph: call does not bind all parameter slots")
)

// AddResult reports the outcome of adding one node: the class call the
// node landed in and whether a fresh class was allocated.
type AddResult struct {
	Call  core.EClassCall
	Added bool // false = AlreadyThere
}

// shapeEntry is one stored node shape with its renaming from shape slots
// ($0..$k-1) into the owning class's slot space. The renaming is always a
// bijection onto its image.
type shapeEntry struct {
	shape    core.Shape
	renaming slots.SlotMap
}

// consEntry is one hash-cons bucket member, verified by full key.
type consEntry struct {
	key   string
	class uint32
}

// userRef locates a node that references a class: the owning class id
// (canonicalized on read) and the node's shape key within it.
type userRef struct {
	class uint32
	key   string
}

func userKey(class uint32, key string) string {
	return strconv.FormatUint(uint64(class), 10) + "|" + key
}

// eclass is the per-canonical-class record.
type eclass struct {
	// params is the sorted set of parameter slots (class slot space).
	params []slots.Slot
	// shapes maps shape key → stored shape entry.
	shapes map[string]shapeEntry
	// group is the permutation group of parameter-slot symmetries.
	group *permGroup
	// users indexes the nodes whose args mention this class, keyed by
	// userKey(class, shapeKey). Entries may go stale when a user node is
	// re-canonicalized; readers verify against the owner's shape set.
	users map[string]userRef
}

func (c *eclass) clone() *eclass {
	out := &eclass{
		params: append([]slots.Slot(nil), c.params...),
		shapes: make(map[string]shapeEntry, len(c.shapes)),
		group:  c.group.clone(),
		users:  make(map[string]userRef, len(c.users)),
	}
	for k, v := range c.shapes {
		out.shapes[k] = v
	}
	for k, v := range c.users {
		out.users[k] = v
	}
	return out
}

// hasParam reports membership in the sorted params set.
func (c *eclass) hasParam(s slots.Slot) bool {
	for _, p := range c.params {
		if p == s {
			return true
		}
	}
	return false
}

// EGraph is the slotted e-graph store. The zero value is not usable;
// construct with New. All exported operations treat the receiver as
// immutable and return fresh snapshots where they change anything.
type EGraph struct {
	// classes maps canonical class id → record.
	classes map[uint32]*eclass
	// leaders maps a non-canonical id → a call on its (possibly itself
	// non-canonical) leader, carrying the slot translation
	// params(leader) → slots of the absorbed class's space.
	leaders map[uint32]core.EClassCall
	// cons buckets shape fingerprints → entries, verified by full key.
	cons map[uint64][]consEntry
	// nextID allocates class ids monotonically.
	nextID uint32

	// sem, facts carry the optional analysis lattice and its table.
	sem   analysis.Semilattice
	facts analysis.Table
}

// Option configures a new graph.
type Option func(*EGraph)

// WithAnalysis attaches a semilattice; the store maintains one fact per
// canonical class across adds and unions.
func WithAnalysis(sem analysis.Semilattice) Option {
	return func(g *EGraph) { g.sem = sem }
}

// New returns an empty e-graph.
// Complexity: O(1)
func New(opts ...Option) *EGraph {
	g := &EGraph{
		classes: make(map[uint32]*eclass),
		leaders: make(map[uint32]core.EClassCall),
		cons:    make(map[uint64][]consEntry),
		facts:   analysis.Table{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Analysis returns the attached semilattice, or nil.
func (g *EGraph) Analysis() analysis.Semilattice { return g.sem }

// Facts returns the per-class fact table. Treat as read-only.
func (g *EGraph) Facts() analysis.Table { return g.facts }

// Emptied returns a fresh graph carrying the same configuration (analysis
// lattice) but no classes.
func (g *EGraph) Emptied() *EGraph {
	ng := New()
	ng.sem = g.sem
	return ng
}
