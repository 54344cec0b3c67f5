// Package analysis defines the semilattice contract for per-class facts
// maintained across e-graph edits.
//
// A Semilattice computes a fact for a freshly added node (Make), combines
// the facts of classes proven equal (Join — commutative, associative,
// idempotent) and re-targets a fact when slots change (Rename). The
// e-graph store owns a Table of facts per canonical class and keeps it
// consistent on every add and union; callers read it through the graph's
// Facts method. The rewrite and saturation packages do not consult it.
//
// Make is assumed monotone under union: joining classes never invalidates
// a previously computed fact, it only coarsens it toward the lattice top.
package analysis
