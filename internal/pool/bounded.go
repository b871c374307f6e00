package pool

import (
	"context"
	"fmt"

	"github.com/lr4d/finite-resource/numeric"
)

// shrinkState tracks whether a bound reduction is still being absorbed.
type shrinkState int

const (
	// shrinkStable: the bound is fully realized, no deficit outstanding.
	shrinkStable shrinkState = iota

	// shrinkPending: an UpdateBound reduction could not reclaim enough free
	// capacity; the remaining deficit is absorbed by future releases.
	shrinkPending
)

// BoundedPool is a Pool with a maximum total capacity. The bound caps
// value + leased: releasing more capacity than was leased out fails with
// ErrOverRelease, and the bound itself can be raised or lowered at runtime
// even while leases are outstanding.
//
// Use an exact amount type (numeric.Rat or numeric.Int64) for bounded
// pools; floating-point drift in the bound accounting is detected late and
// harshly (see UpdateBound).
type BoundedPool[T numeric.Value[T]] struct {
	p Pool[T]

	// bound is the maximum total capacity. Invariant: value <= bound after
	// every completed Release and UpdateBound. Guarded by p.mu.
	bound T

	// shrink and deficit form the deferred-shrink state machine. deficit is
	// meaningful only in shrinkPending. Guarded by p.mu.
	shrink  shrinkState
	deficit T
}

// Option configures a BoundedPool.
type Option[T numeric.Value[T]] func(*BoundedPool[T])

// WithBound sets the maximum total capacity explicitly. Without it the
// bound equals the initial value, i.e. the pool starts fully released.
func WithBound[T numeric.Value[T]](bound T) Option[T] {
	return func(b *BoundedPool[T]) {
		b.bound = bound
	}
}

// NewBounded returns a bounded pool holding the given initial capacity.
func NewBounded[T numeric.Value[T]](initial T, opts ...Option[T]) (*BoundedPool[T], error) {
	if initial.Sign() < 0 {
		return nil, ErrNegativeInitialValue
	}
	b := &BoundedPool[T]{bound: initial}
	b.p.value = initial
	for _, opt := range opts {
		opt(b)
	}
	if b.bound.Sign() < 0 {
		return nil, ErrNegativeBound
	}
	return b, nil
}

// Acquire obtains amount units of capacity. See Pool.Acquire.
func (b *BoundedPool[T]) Acquire(ctx context.Context, amount T) error {
	return b.p.Acquire(ctx, amount)
}

// Release returns amount units of capacity to the pool.
//
// If a bound reduction is still pending, the release is first absorbed into
// the outstanding deficit, letting leases taken out under the old bound
// release cleanly instead of erroring. It then fails with ErrOverRelease if
// the accounting would push the available capacity to or past the bound.
//
// Note that an uncoordinated Release arriving while a deficit is pending can
// consume deficit that "belonged" to an active lease, surfacing the
// over-release error at that lease's later Release instead. This ordering
// race is an accepted limitation.
func (b *BoundedPool[T]) Release(amount T) error {
	b.p.mu.Lock()
	defer b.p.mu.Unlock()

	if b.shrink == shrinkPending {
		absorbed := b.deficit
		if amount.Cmp(absorbed) < 0 {
			absorbed = amount
		}
		b.p.value = b.p.value.Sub(absorbed)
		b.deficit = b.deficit.Sub(absorbed)
		if b.deficit.Sign() == 0 {
			b.setStable()
		}
	}
	if b.p.value.Cmp(b.bound) >= 0 {
		return ErrOverRelease
	}
	b.p.value = b.p.value.Add(amount)
	b.p.wakeOne()
	return nil
}

// UpdateBound changes the maximum total capacity to newBound. It reports
// whether the change was fully applied, and for a reduction that could not
// be absorbed immediately, the deficit that remains deferred.
//
// Raising the bound adds the difference to the available capacity and wakes
// every queued waiter the new capacity satisfies. Lowering it reclaims as
// much free capacity as possible right away; whatever is still held by
// active leases becomes a pending deficit that future Release calls absorb.
//
// UpdateBound panics if the deficit arithmetic goes negative. That can only
// happen when the amount type lacks precision (floating-point drift); use
// numeric.Rat or numeric.Int64 instead.
func (b *BoundedPool[T]) UpdateBound(newBound T) (applied bool, remaining T) {
	b.p.mu.Lock()
	defer b.p.mu.Unlock()

	var zero T
	switch cmp := newBound.Cmp(b.bound); {
	case cmp == 0:
		b.setStable()
		return true, zero

	case cmp > 0:
		diff := newBound.Sub(b.bound)
		b.bound = newBound
		b.p.value = b.p.value.Add(diff)
		b.setStable()
		b.p.wakeAll()
		return true, zero

	default:
		want := b.bound.Sub(newBound)
		// The free (unleased) capacity is reclaimable without touching any
		// lease; take as much of it as the reduction needs.
		take := want
		if b.p.value.Cmp(take) < 0 {
			take = b.p.value
		}
		if take.Sign() > 0 {
			b.p.value = b.p.value.Sub(take)
			want = want.Sub(take)
		}
		b.bound = newBound
		switch {
		case want.Sign() == 0:
			b.setStable()
			return true, zero
		case want.Sign() > 0:
			b.shrink = shrinkPending
			b.deficit = want
			return false, want
		default:
			panic("finiteresource: bound deficit went negative; amount type lacks precision, use numeric.Rat or numeric.Int64")
		}
	}
}

// Bound returns the current maximum total capacity.
func (b *BoundedPool[T]) Bound() T {
	b.p.mu.Lock()
	defer b.p.mu.Unlock()
	return b.bound
}

// PendingShrink returns the deficit of a bound reduction that has not been
// fully absorbed yet, and whether one is outstanding.
func (b *BoundedPool[T]) PendingShrink() (T, bool) {
	b.p.mu.Lock()
	defer b.p.mu.Unlock()
	return b.deficit, b.shrink == shrinkPending
}

// Locked reports whether an Acquire of any amount would have to yield.
// See Pool.Locked.
func (b *BoundedPool[T]) Locked() bool {
	return b.p.Locked()
}

// LockedForValue reports whether an Acquire of the given amount would block
// or jump ahead of a queued waiter. See Pool.LockedForValue.
func (b *BoundedPool[T]) LockedForValue(amount T) bool {
	return b.p.LockedForValue(amount)
}

// Value returns the currently available capacity. See Pool.Value.
func (b *BoundedPool[T]) Value() T {
	return b.p.Value()
}

// WaiterCount returns the number of queued acquisitions. See
// Pool.WaiterCount.
func (b *BoundedPool[T]) WaiterCount() int {
	return b.p.WaiterCount()
}

// Use acquires amount and returns a single-use lease that releases it. A
// lease release that trips ErrOverRelease is reported by Lease.Release.
func (b *BoundedPool[T]) Use(ctx context.Context, amount T) (*Lease[T], error) {
	if err := b.p.Acquire(ctx, amount); err != nil {
		return nil, err
	}
	return &Lease[T]{amount: amount, release: b.Release}, nil
}

func (b *BoundedPool[T]) String() string {
	b.p.mu.Lock()
	defer b.p.mu.Unlock()
	state := "unlocked"
	if b.p.value.Sign() == 0 || b.p.grantPending() {
		state = "locked"
	}
	s := fmt.Sprintf("BoundedPool[%s value:%v bound:%v", state, b.p.value, b.bound)
	if b.shrink == shrinkPending {
		s += fmt.Sprintf(" shrinking:%v", b.deficit)
	}
	if n := len(b.p.waiters); n > 0 {
		s += fmt.Sprintf(" waiters:%d", n)
	}
	return s + "]"
}

// setStable resets the shrink state machine. Callers must hold p.mu.
func (b *BoundedPool[T]) setStable() {
	var zero T
	b.shrink = shrinkStable
	b.deficit = zero
}
