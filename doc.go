// Package foresight is an equality-saturation toolkit for Go: represent
// many equivalent forms of a term in one slotted e-graph, rewrite them
// all at once with rules, and extract the best representative afterwards.
//
// 🚀 What is foresight?
//
//	A library for building optimizers on top of e-graphs with
//	first-class bound variables (slots):
//
//	  • Slotted e-graph core: hash-consed nodes, congruence closure,
//	    alpha-equivalence for free
//	  • Pattern engine: patterns compile to a register machine that
//	    enumerates matches over pooled machine states
//	  • Saturation loop: staged command schedules, match caching,
//	    stochastic application, timeouts and rebasing
//
// ✨ Why choose foresight?
//
//   - Immutable snapshots  — every edit returns a fresh graph value
//   - Deterministic        — stable orders everywhere, reproducible runs
//   - Parallel             — per-rule search and per-match planning fan out
//   - Binder-aware         — lambdas collapse up to renaming, by the slot
//     model itself rather than by extra rules
//
// Everything is organized under focused subpackages:
//
//	slots/      — variable identifiers and renamings
//	core/       — e-nodes, shapes, class calls, term trees
//	egraph/     — the store: add, union, canonicalize, query
//	schedule/   — staged edit plans (the rule ↔ store protocol)
//	pattern/    — pattern language, compiler and matching VM
//	rewrite/    — searchers, appliers, rules
//	saturation/ — strategies, configuration, the outer loop
//	parallel/   — pluggable work scheduling and cancellation
//	analysis/   — semilattice facts per class
//	extract/    — lowest-cost tree extraction
//
// A ten-line taste:
//
//	g := egraph.New()
//	root, g, _ := g.AddTree(core.NewTree("add", core.NewTree("const:1"), core.NewTree("const:2")))
//	rule := rewrite.MustRule("add-commute",
//		pattern.NewNode("add", pattern.NewVar("x"), pattern.NewVar("y")),
//		pattern.NewNode("add", pattern.NewVar("y"), pattern.NewVar("x")))
//	g, _ = saturation.Run(saturation.RepeatUntilStable(saturation.NewMaximal([]rewrite.Rule{rule})), g, parallel.Default())
//	best, _ := extract.NewBottomUp(nil).Extract(root, g)
//
//	go get github.com/katalvlaran/foresight
package foresight
