// Package extract turns e-classes back into trees.
//
// # Extractor contract
//
// An Extractor maps an e-class call to the least-cost ground tree the
// class can produce, deterministically and totally over the classes
// reachable from the call. The saturation loop's Rebase strategy relies
// on exactly this contract; everything beyond it (domain cost models) is
// client territory.
//
// # BottomUp
//
// BottomUp is the reference extractor: a fixpoint pass assigns each class
// the cheapest cost any of its nodes admits once all children are costed,
// then the tree is rebuilt top-down along the winning nodes. Ties break
// on shape key, so extraction is deterministic for a given graph.
package extract
