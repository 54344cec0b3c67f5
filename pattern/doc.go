// Package pattern implements the pattern language and the register-based
// matching machine that enumerates pattern occurrences over an e-graph.
//
// # Patterns
//
// A Pattern is a mixed tree of operator nodes and pattern variables. A
// variable matches any e-class call and binds it; repeated variables must
// bind equal classes. Node patterns additionally carry pattern slots in
// their Defs/Uses positions, which bind to the actual slots of matched
// nodes and must agree across repeated occurrences.
//
// # Compilation
//
// Compile flattens a pattern into an instruction list over a register
// file. Register 0 holds the root call; each matched node appends its
// child calls to fresh registers. Three instructions exist:
//
//	BindNode - enumerate candidate nodes of a class, bind slots, push args
//	BindVar  - bind a pattern variable to a register's call
//	Compare  - require two registers to hold the same class
//
// The first occurrence of a variable compiles to BindVar, every later
// occurrence to Compare against the first occurrence's register.
//
// # Execution
//
// The machine runs in continuation-passing style: each completed match is
// handed to a yield function, and a false return stops the whole
// enumeration. A BindNode with several candidates forks the machine
// state; candidate order follows shape keys, so enumeration is
// deterministic for a given graph. Machine states are pooled and sized
// from the pattern's static effect summary, so register files and binding
// maps are reused across runs; each BindNode step still allocates its
// candidate node list, and each yielded Match copies its bindings.
//
// Mismatches prune silently during search; Diagnose reruns a root and
// reports the first failure (ErrNoMatchingNode, ErrInconsistentVars) for
// diagnostic runs.
package pattern
