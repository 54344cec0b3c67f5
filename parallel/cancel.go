// Package parallel: cooperative cancellation tokens.
package parallel

import (
	"errors"
	"sync/atomic"
	"time"
)

// ErrCanceled is the distinguished cancellation signal. It is control
// flow, not a failure: callers that arm a token catch it and treat the
// interrupted work as having made no progress.
var ErrCanceled = errors.New("parallel: canceled")

// Token is a shared atomic cancellation flag. The zero value is unusable;
// construct with NewToken or NewTimeoutToken. Workers poll the token at
// item boundaries; nothing is preempted.
type Token struct {
	tripped atomic.Bool
	timer   *time.Timer
	chain   []*Token // derived tokens also honor these
}

// NewToken returns an untripped token.
func NewToken() *Token { return &Token{} }

// NewTimeoutToken returns a token that trips itself after d. Stop releases
// the timer early.
func NewTimeoutToken(d time.Duration) *Token {
	t := &Token{}
	t.timer = time.AfterFunc(d, func() { t.tripped.Store(true) })
	return t
}

// Trip marks the token cancelled. Idempotent; safe for concurrent use.
func (t *Token) Trip() {
	if t != nil {
		t.tripped.Store(true)
	}
}

// Stop releases the timeout timer of a NewTimeoutToken. No-op otherwise.
func (t *Token) Stop() {
	if t != nil && t.timer != nil {
		t.timer.Stop()
	}
}

// Tripped reports whether the token (or any chained token) is cancelled.
// Complexity: O(1); a single atomic load per token in the chain.
func (t *Token) Tripped() bool {
	if t == nil {
		return false
	}
	if t.tripped.Load() {
		return true
	}
	for _, c := range t.chain {
		if c.Tripped() {
			return true
		}
	}
	return false
}

// Poll returns ErrCanceled when tripped, nil otherwise. Nil receivers are
// never tripped, so unarmed maps poll for free.
func (t *Token) Poll() error {
	if t.Tripped() {
		return ErrCanceled
	}
	return nil
}
