package pool

import (
	"sync"

	"github.com/lr4d/finite-resource/numeric"
)

// Lease pairs one successful acquisition with its guaranteed matching
// release. It is single-use: the first Release returns the amount to the
// pool, any further Release is a usage error.
type Lease[T numeric.Value[T]] struct {
	amount  T
	release func(T) error

	mu    sync.Mutex
	spent bool
}

// Amount returns the amount held by the lease.
func (l *Lease[T]) Amount() T {
	return l.amount
}

// Release returns the leased amount to the pool. Calling it on an already
// released lease returns ErrLeaseReleased; for a bounded pool it may also
// return ErrOverRelease if the pool's accounting was violated elsewhere.
func (l *Lease[T]) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.spent {
		return ErrLeaseReleased
	}
	l.spent = true
	return l.release(l.amount)
}

// Close releases the lease, ignoring any error. It is provided for
// convenience with defer statements.
func (l *Lease[T]) Close() {
	_ = l.Release()
}
