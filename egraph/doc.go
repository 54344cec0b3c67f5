// Package egraph implements the slotted, immutable e-graph store: a forest
// of hash-consed e-nodes quotiented by congruence and user-supplied
// equalities, with first-class bound variables (slots).
//
// # Model
//
// Every e-class is stored slot-normalized: the class owns a set of
// parameter slots, a set of node shapes (each with a renaming from shape
// slots into the class's slot space), the permutation group of slot
// symmetries the class satisfies, and the inverse index of nodes that
// reference it (its users). The hash-cons index maps each shape to the one
// canonical class containing it.
//
// Between atomic operations the store maintains:
//
//   - Hash-consing: any shape lives in at most one canonical class.
//   - Congruence: nodes with equal shapes and canonically equal child
//     calls share a class.
//   - Canonicity: stored args are canonical; parameter slot sets are
//     closed under the class's permutation group.
//   - User-index consistency: Users(c) lists exactly the nodes whose args
//     mention c.
//
// # Value semantics
//
// An EGraph is a persistent value: TryAddMany, UnionMany, AddTree and
// friends return a fresh snapshot and never mutate their receiver.
// Snapshots share structure (clone-on-write on the touched classes), so
// deriving a graph is cheap and worker threads may keep reading an old
// snapshot while a new one is built.
//
// # Union and upward merging
//
// UnionMany drains a work-list: merging two classes unifies their
// parameter slots through the bijection implied by the two calls,
// re-canonicalizes every node that mentions either class, and queues
// congruent collisions for further union (upward merging). Uniting a class
// with itself under two different argument maps absorbs the implied slot
// automorphism into the class's permutation group; parameters that the two
// sides cannot agree on become redundant internal slots and leave the
// parameter set.
//
// Tie-breaks are deterministic: the class with more stored shapes absorbs
// the other, ties toward the lower class id.
package egraph
