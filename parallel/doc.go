// Package parallel abstracts work scheduling for the saturation pipeline.
//
// # Map
//
// A Map runs n independent items and preserves input order in the results
// (see the generic Apply helper). Three concrete variants exist:
//
//	Sequential() - everything on the calling goroutine
//	Fixed(n)     - a bounded pool of n workers
//	Default()    - a bounded pool sized to GOMAXPROCS
//
// Maps are hierarchically labeled: Child(label) derives a map whose label
// path names a pipeline stage. The label is only carried along; no timings
// are collected and errors are returned without the label attached.
//
// # Cancellation
//
// Cancellation is cooperative. A Token is a shared atomic flag; workers
// poll it at item boundaries, and a tripped token aborts the run with
// ErrCanceled. The Cancelable wrapper injects polling without touching
// per-item code, and NewTimeoutToken arms a token on a wall-clock budget.
// ErrCanceled is a control-flow signal, not a failure: strategy wrappers
// catch it and treat the interrupted iteration as having made no progress.
package parallel
