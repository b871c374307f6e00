// Package waitqueue provides the single-use wake handle that a blocked
// acquisition suspends on. A handle is created by the pool when an acquire
// cannot be satisfied immediately, granted by whichever goroutine frees
// enough capacity, and waited on by the acquiring goroutine together with
// its context.
package waitqueue

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Waiter is a single-use wake handle. Wait may be called by exactly one
// goroutine. Grant, Abandon, Done, and Granted are not synchronized by the
// Waiter itself: the owning pool must serialize them under its own lock.
type Waiter struct {
	id string
	ch chan struct{}

	// done is set once the waiter's outcome is decided, granted only when
	// that outcome was a successful grant. Guarded by the owner's lock.
	done    bool
	granted bool
}

// NewWaiter returns a pending wake handle with a fresh unique identifier.
func NewWaiter() *Waiter {
	return &Waiter{
		id: uuid.NewString(),
		ch: make(chan struct{}),
	}
}

// ID returns the waiter's unique identifier.
func (w *Waiter) ID() string {
	return w.id
}

// Grant completes the handle successfully and wakes the waiting goroutine.
// It reports whether the grant took effect; a handle whose outcome is
// already decided cannot be granted again.
func (w *Waiter) Grant() bool {
	if w.done {
		return false
	}
	w.done = true
	w.granted = true
	close(w.ch)
	return true
}

// Abandon marks the handle as decided without granting it, so later wake
// attempts skip this waiter.
func (w *Waiter) Abandon() {
	w.done = true
}

// Done reports whether the waiter's outcome has been decided.
func (w *Waiter) Done() bool {
	return w.done
}

// Granted reports whether the waiter was successfully granted. On the
// cancellation path this distinguishes a grant that raced with the
// cancellation (and must be rolled back) from a plain cancellation.
func (w *Waiter) Granted() bool {
	return w.granted
}

// Wait blocks until the handle is granted or ctx is done, whichever comes
// first. It returns ctx.Err() on cancellation. A grant that lands while the
// cancellation is being delivered may be missed here; the caller must check
// Granted under its lock before trusting a cancellation result.
func (w *Waiter) Wait(ctx context.Context) error {
	select {
	case <-w.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Waiter) String() string {
	state := "pending"
	switch {
	case w.granted:
		state = "granted"
	case w.done:
		state = "abandoned"
	}
	return fmt.Sprintf("waiter %s (%s)", w.id, state)
}
