// Package finiteresource provides a weighted synchronization primitive: a
// pool holding a numeric quantity of an abstract resource, from which
// concurrent goroutines acquire and later release arbitrary positive
// amounts. It generalizes a mutex to fractional, variable-size leases
// ("reserve 2.5 units of bandwidth") with first-in-first-out fairness among
// blocked requesters.
//
// Amounts are generic over the ordered numeric types in the numeric
// subpackage; use numeric.Rat for exact fractional accounting.
//
// Basic usage:
//
//	pool, err := finiteresource.New(numeric.Float64(3.5))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Block until 2 units are available, then hold them.
//	if err := pool.Acquire(ctx, numeric.Float64(2)); err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Release(numeric.Float64(2))
//
// Or scoped, with the release guaranteed exactly once:
//
//	lease, err := pool.Use(ctx, numeric.Float64(1.2))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer lease.Close()
//
// The bounded variant caps the total capacity and lets it be resized at
// runtime, even while leases are outstanding:
//
//	pool, err := finiteresource.NewBounded(numeric.MustParseRat("3"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Shrink the capacity; whatever active leases still hold is absorbed
//	// as they release.
//	applied, remaining := pool.UpdateBound(numeric.MustParseRat("1"))
//
// Blocked acquisitions are woken strictly head-first among requests that
// actually had to wait. A fresh request that fits in the available capacity
// is served immediately even while larger, earlier requests remain queued;
// Locked and LockedForValue let a careful caller detect that and yield.
package finiteresource
