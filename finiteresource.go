package finiteresource

import (
	"github.com/lr4d/finite-resource/internal/pool"
	"github.com/lr4d/finite-resource/numeric"
)

// Pool is an unbounded weighted resource pool.
// This is a wrapper around the internal implementation.
type Pool[T numeric.Value[T]] = pool.Pool[T]

// BoundedPool is a weighted resource pool with a resizable maximum total
// capacity. This is a wrapper around the internal implementation.
type BoundedPool[T numeric.Value[T]] = pool.BoundedPool[T]

// Lease is a single-use pairing of one acquisition with its release.
// This is a wrapper around the internal implementation.
type Lease[T numeric.Value[T]] = pool.Lease[T]

// Option configures a BoundedPool.
type Option[T numeric.Value[T]] = pool.Option[T]

var (
	// ErrNegativeInitialValue is returned by New and NewBounded when the
	// initial capacity is negative.
	ErrNegativeInitialValue = pool.ErrNegativeInitialValue

	// ErrNegativeBound is returned by NewBounded when the configured bound
	// is negative.
	ErrNegativeBound = pool.ErrNegativeBound

	// ErrNonPositiveAmount is returned by Acquire when the requested amount
	// is zero or negative.
	ErrNonPositiveAmount = pool.ErrNonPositiveAmount

	// ErrOverRelease is returned by BoundedPool.Release when more capacity
	// is returned than was ever leased out.
	ErrOverRelease = pool.ErrOverRelease

	// ErrLeaseReleased is returned when a lease is released a second time.
	ErrLeaseReleased = pool.ErrLeaseReleased
)

// New returns an unbounded pool holding the given initial capacity.
// It returns ErrNegativeInitialValue if initial is negative.
func New[T numeric.Value[T]](initial T) (*Pool[T], error) {
	return pool.New(initial)
}

// NewBounded returns a bounded pool holding the given initial capacity.
// The bound defaults to the initial value; WithBound overrides it.
func NewBounded[T numeric.Value[T]](initial T, opts ...Option[T]) (*BoundedPool[T], error) {
	return pool.NewBounded(initial, opts...)
}

// WithBound sets a BoundedPool's maximum total capacity explicitly.
func WithBound[T numeric.Value[T]](bound T) Option[T] {
	return pool.WithBound(bound)
}
