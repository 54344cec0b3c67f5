// Package rewrite assembles pattern matching and schedule planning into
// rules.
//
// A Searcher enumerates matches over an e-graph snapshot in
// continuation-passing style; an Applier plans one match's edits into a
// schedule builder. Both compose with filter/map/flatMap combinators,
// left-to-right. A Rule bundles a name, a searcher and an applier:
// Delayed collects every current match and plans them into one optimized
// schedule ("apply every match" as a single command); Apply executes it.
//
// Appliers must be safe for concurrent invocation on distinct matches of
// one snapshot: the strategy layer plans matches in parallel and merges
// the fragments deterministically afterwards.
//
// Matches are portable: Match.Port re-targets recorded calls onto a
// derived graph, which the caching strategy uses after every union.
package rewrite
