// Package pool implements the weighted resource pool core: a numeric amount
// of capacity, a FIFO queue of blocked acquisitions, and the wake protocol
// that moves capacity between them.
package pool

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lr4d/finite-resource/internal/waitqueue"
	"github.com/lr4d/finite-resource/numeric"
)

var (
	// ErrNegativeInitialValue is returned by the constructors when the
	// initial capacity is negative.
	ErrNegativeInitialValue = errors.New("initial value must be >= 0")

	// ErrNegativeBound is returned by NewBounded when the configured bound
	// is negative.
	ErrNegativeBound = errors.New("bound must be >= 0")

	// ErrNonPositiveAmount is returned by Acquire when the requested amount
	// is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be > 0")

	// ErrOverRelease is returned by BoundedPool.Release when the release
	// would push the available capacity to or past the bound, i.e. more
	// capacity is being returned than was ever leased out.
	ErrOverRelease = errors.New("released too many times")

	// ErrLeaseReleased is returned when a lease is released a second time.
	ErrLeaseReleased = errors.New("lease already released")
)

// waiter is one queued blocked acquisition: the amount it is waiting for,
// the handle it suspends on, and the context of the Acquire call (consulted
// by wake attempts and the advisory queries to skip cancelled entries).
type waiter[T numeric.Value[T]] struct {
	amount T
	handle *waitqueue.Waiter
	ctx    context.Context
}

// Pool holds a numeric quantity of an abstract resource from which
// concurrent goroutines acquire and release arbitrary positive amounts.
// Blocked acquisitions are served first-in-first-out; fresh acquisitions
// that fit in the available capacity are served immediately regardless of
// the queue (see Acquire). There is no upper bound on the capacity; see
// BoundedPool for the bounded variant.
type Pool[T numeric.Value[T]] struct {
	mu sync.Mutex

	// value is the currently available capacity. Invariant: value >= 0
	// whenever mu is not held.
	value T

	// waiters holds blocked acquisitions in arrival order. Entries are
	// removed by their own goroutine once their handle is decided.
	waiters []*waiter[T]
}

// New returns a pool holding the given initial capacity.
func New[T numeric.Value[T]](initial T) (*Pool[T], error) {
	if initial.Sign() < 0 {
		return nil, ErrNegativeInitialValue
	}
	return &Pool[T]{value: initial}, nil
}

// Acquire obtains amount units of capacity, blocking until they are
// available or ctx is done. It returns ErrNonPositiveAmount if amount is
// not positive, ctx.Err() if the wait was cancelled, and nil on success.
//
// If the request fits in the currently available capacity it is served
// immediately, even while larger requests are still queued: FIFO ordering
// is guaranteed only among acquisitions that actually had to block. Callers
// that want to yield to the queue can consult Locked or LockedForValue
// first.
func (p *Pool[T]) Acquire(ctx context.Context, amount T) error {
	if amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}

	p.mu.Lock()
	if p.value.Cmp(amount) >= 0 {
		p.value = p.value.Sub(amount)
		p.mu.Unlock()
		return nil
	}

	w := &waiter[T]{amount: amount, handle: waitqueue.NewWaiter(), ctx: ctx}
	p.waiters = append(p.waiters, w)
	p.mu.Unlock()

	if err := w.handle.Wait(ctx); err != nil {
		p.mu.Lock()
		granted := w.handle.Granted()
		w.handle.Abandon()
		p.remove(w)
		if granted {
			// A wake raced with the cancellation: the waker already
			// deducted our amount from value. Credit it back and hand the
			// surplus to someone else, otherwise their wakeup is lost.
			p.value = p.value.Add(amount)
		}
		p.wakeAll()
		p.mu.Unlock()
		return err
	}

	// Granted. New waiters may have queued behind us while we held the
	// front of the line; we are the only goroutine about to run that can
	// drain the remaining capacity on their behalf.
	p.mu.Lock()
	p.remove(w)
	p.wakeAll()
	p.mu.Unlock()
	return nil
}

// Release returns amount units of capacity to the pool and wakes the first
// queued acquisition that the new capacity satisfies, if any. It never
// blocks.
func (p *Pool[T]) Release(amount T) {
	p.mu.Lock()
	p.value = p.value.Add(amount)
	p.wakeOne()
	p.mu.Unlock()
}

// Locked reports whether an Acquire of any amount would have to yield: the
// pool is drained, or a queued waiter could be satisfied by the available
// capacity but has not been woken yet. Advisory only; Acquire does not
// consult it.
func (p *Pool[T]) Locked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value.Sign() == 0 || p.grantPending()
}

// LockedForValue reports whether an Acquire of the given amount would block
// or jump ahead of a queued waiter. Advisory only, like Locked.
func (p *Pool[T]) LockedForValue(amount T) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value.Cmp(amount) < 0 || p.grantPending()
}

// Value returns the currently available capacity. The snapshot is stale as
// soon as it is returned; it is meant for tests and diagnostics.
func (p *Pool[T]) Value() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// WaiterCount returns the number of queued acquisitions, including entries
// whose outcome is decided but which have not removed themselves yet.
func (p *Pool[T]) WaiterCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiters)
}

// Use acquires amount and returns a single-use lease that releases it.
// Callers are expected to defer the release:
//
//	lease, err := p.Use(ctx, amount)
//	if err != nil {
//		return err
//	}
//	defer lease.Close()
func (p *Pool[T]) Use(ctx context.Context, amount T) (*Lease[T], error) {
	if err := p.Acquire(ctx, amount); err != nil {
		return nil, err
	}
	return &Lease[T]{
		amount: amount,
		release: func(amount T) error {
			p.Release(amount)
			return nil
		},
	}, nil
}

func (p *Pool[T]) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	state := "unlocked"
	if p.value.Sign() == 0 || p.grantPending() {
		state = "locked"
	}
	if len(p.waiters) == 0 {
		return fmt.Sprintf("Pool[%s value:%v]", state, p.value)
	}
	return fmt.Sprintf("Pool[%s value:%v waiters:%d]", state, p.value, len(p.waiters))
}

// grantPending reports whether some live waiter could be satisfied by the
// available capacity. Callers must hold p.mu.
func (p *Pool[T]) grantPending() bool {
	for _, w := range p.waiters {
		if p.live(w) && p.value.Cmp(w.amount) >= 0 {
			return true
		}
	}
	return false
}

// live reports whether w is still waiting for an outcome. Callers must hold
// p.mu.
func (p *Pool[T]) live(w *waiter[T]) bool {
	return !w.handle.Done() && w.ctx.Err() == nil
}

// wakeOne grants the first live waiter that fits in the available capacity,
// deducting its amount, and reports whether anyone was woken. Earlier
// waiters that do not fit are skipped. Callers must hold p.mu.
func (p *Pool[T]) wakeOne() bool {
	for _, w := range p.waiters {
		if p.live(w) && p.value.Cmp(w.amount) >= 0 {
			p.value = p.value.Sub(w.amount)
			w.handle.Grant()
			return true
		}
	}
	return false
}

// wakeAll grants waiters head-first until the remaining capacity satisfies
// no one. Callers must hold p.mu.
func (p *Pool[T]) wakeAll() {
	for p.value.Sign() > 0 {
		if !p.wakeOne() {
			break
		}
	}
}

// remove deletes w from the queue. Callers must hold p.mu.
func (p *Pool[T]) remove(w *waiter[T]) {
	id := w.handle.ID()
	p.waiters = slices.DeleteFunc(p.waiters, func(other *waiter[T]) bool {
		return other.handle.ID() == id
	})
}
