package finiteresource_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	finiteresource "github.com/lr4d/finite-resource"
	"github.com/lr4d/finite-resource/numeric"
)

type waiterCounter interface{ WaiterCount() int }

func acquireAsync[T numeric.Value[T]](ctx context.Context, p interface {
	Acquire(context.Context, T) error
}, amount T) <-chan error {
	errs := make(chan error, 1)
	go func() {
		errs <- p.Acquire(ctx, amount)
	}()
	return errs
}

func waitForWaiters(t *testing.T, p waiterCounter, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return p.WaiterCount() >= n },
		time.Second, time.Millisecond)
}

func requireResult(t *testing.T, errs <-chan error) error {
	t.Helper()
	select {
	case err := <-errs:
		return err
	case <-time.After(time.Second):
		t.Fatal("acquisition did not return")
		return nil
	}
}

func requireBlocked(t *testing.T, errs <-chan error) {
	t.Helper()
	select {
	case err := <-errs:
		t.Fatalf("acquisition returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestPool_EndToEnd walks the canonical flow: a fast acquisition, a second
// fast acquisition bypassing nothing, and a release restoring the pool.
func TestPool_EndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	pool, err := finiteresource.New(numeric.Float64(3.5))
	require.NoError(t, err)

	require.NoError(t, pool.Acquire(ctx, numeric.Float64(2)))
	assert.Equal(t, numeric.Float64(1.5), pool.Value())

	require.NoError(t, pool.Acquire(ctx, numeric.Float64(1)))
	assert.Equal(t, numeric.Float64(0.5), pool.Value())

	pool.Release(numeric.Float64(3))
	assert.Equal(t, numeric.Float64(3.5), pool.Value())
}

// TestBoundedPool_DecimalResize ports the original exact-arithmetic resize
// flow: raise the bound to wake a waiter, shrink it to nearly nothing, let
// the outstanding leases absorb the deficit, and keep growing it back until
// a late waiter finally fits.
func TestBoundedPool_DecimalResize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	pool, err := finiteresource.NewBounded(numeric.MustParseRat("2.53523463153"))
	require.NoError(t, err)

	require.ErrorIs(t, pool.Release(numeric.RatFromInt(1)), finiteresource.ErrOverRelease)

	require.NoError(t, pool.Acquire(ctx, numeric.RatFromInt(1)))
	second := acquireAsync(ctx, pool, numeric.RatFromInt(2))
	waitForWaiters(t, pool, 1)
	requireBlocked(t, second)

	applied, _ := pool.UpdateBound(numeric.RatFromInt(3))
	assert.True(t, applied)
	require.NoError(t, requireResult(t, second))
	assert.True(t, pool.Locked())

	// Shrink to almost nothing while both leases are outstanding.
	applied, remaining := pool.UpdateBound(numeric.MustParseRat("1e-9"))
	assert.False(t, applied)
	assert.Equal(t, 1, remaining.Sign())

	// The leases release cleanly into the deficit...
	require.NoError(t, pool.Release(numeric.RatFromInt(2)))
	require.NoError(t, pool.Release(numeric.RatFromInt(1)))
	require.Zero(t, pool.Value().Cmp(numeric.MustParseRat("1e-9")))

	// ...but not a fraction more than was leased.
	require.ErrorIs(t, pool.Release(numeric.MustParseRat("1e-8")), finiteresource.ErrOverRelease)

	third := acquireAsync(ctx, pool, numeric.RatFromInt(1))
	waitForWaiters(t, pool, 1)
	requireBlocked(t, third)

	_, _ = pool.UpdateBound(numeric.MustParseRat("0.5"))
	requireBlocked(t, third)

	_, _ = pool.UpdateBound(numeric.RatFromInt(1))
	require.NoError(t, requireResult(t, third))
}

// TestBoundedPool_ShrinkToZeroWithLeases ports the original context-manager
// flow: shrink a busy pool to zero, watch leases drain into the deficit, and
// verify later acquisitions stay blocked until the bound grows again.
func TestBoundedPool_ShrinkToZeroWithLeases(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	pool, err := finiteresource.NewBounded(numeric.Int64(20))
	require.NoError(t, err)
	require.ErrorIs(t, pool.Release(numeric.Int64(1)), finiteresource.ErrOverRelease)

	first, err := pool.Use(ctx, numeric.Int64(1))
	require.NoError(t, err)
	second, err := pool.Use(ctx, numeric.Int64(2))
	require.NoError(t, err)
	assert.Equal(t, numeric.Int64(17), pool.Value())

	_, _ = pool.UpdateBound(numeric.Int64(0))
	assert.True(t, pool.Locked())

	blocked := acquireAsync(ctx, pool, numeric.Int64(1))
	waitForWaiters(t, pool, 1)

	require.NoError(t, first.Release())
	require.NoError(t, second.Release())
	requireBlocked(t, blocked)
	assert.True(t, pool.Locked())

	// Raising the bound to 3 lets a small request through while a large
	// one keeps waiting.
	large := acquireAsync(ctx, pool, numeric.Int64(20))
	waitForWaiters(t, pool, 2)

	_, _ = pool.UpdateBound(numeric.Int64(3))
	require.NoError(t, requireResult(t, blocked))
	requireBlocked(t, large)

	_, _ = pool.UpdateBound(numeric.Int64(22))
	require.NoError(t, requireResult(t, large))
}
