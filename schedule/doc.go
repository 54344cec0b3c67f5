// Package schedule describes e-graph edits without applying them.
//
// # Model
//
// A Schedule is an ordered list of addition batches followed by a flat
// list of union pairs. Batch 0 holds concrete nodes; later batches may
// reference virtual symbols produced by earlier batches, resolved only at
// execution time. An EClassSymbol is either Real (a concrete e-class
// call) or Virtual (a placeholder allocated at plan time); commands that
// address virtuals carry no e-graph ids until Execute reifies them.
//
// Schedules are how rules talk to the store: each applier plans its edits
// into a Builder, the strategy merges every rule's schedule into one,
// optimizes it (additions before unions, batches coalesced where virtual
// data-flow permits, unions deduplicated) and executes it in a single
// serialized mutation step.
//
// Additions within one batch never depend on virtuals bound in the same
// batch, so the store may parallelize their hashing freely.
package schedule
