// Package numeric defines the amount abstraction used by the resource pools.
//
// Pool amounts are generic over any ordered numeric type that supports
// addition, subtraction, comparison, and a sign test. Three implementations
// are provided:
//
//   - Int64: exact integer amounts.
//   - Float64: floating-point amounts. Convenient, but subtraction drift can
//     corrupt bound accounting; prefer Rat or Int64 for bounded pools.
//   - Rat: exact rational amounts backed by math/big. This is the
//     recommended type whenever fractional amounts meet a capacity bound.
package numeric

import (
	"cmp"
	"fmt"
	"math/big"
)

// Value is the constraint satisfied by pool amount types. Implementations
// must be immutable: every operation returns a new value and leaves its
// operands untouched. Cmp and Sign follow the math/big convention of
// returning -1, 0, or +1.
type Value[T any] interface {
	Add(T) T
	Sub(T) T
	Cmp(T) int
	Sign() int
}

// Int64 is an exact integer amount.
type Int64 int64

func (a Int64) Add(b Int64) Int64 { return a + b }
func (a Int64) Sub(b Int64) Int64 { return a - b }
func (a Int64) Cmp(b Int64) int   { return cmp.Compare(a, b) }
func (a Int64) Sign() int         { return cmp.Compare(a, 0) }
func (a Int64) String() string    { return fmt.Sprintf("%d", int64(a)) }

// Float64 is a floating-point amount. Exactness is the caller's problem:
// repeated add/sub round-trips may not restore the original value, which the
// bounded pool treats as a precision fault.
type Float64 float64

func (a Float64) Add(b Float64) Float64 { return a + b }
func (a Float64) Sub(b Float64) Float64 { return a - b }
func (a Float64) Cmp(b Float64) int     { return cmp.Compare(a, b) }
func (a Float64) Sign() int             { return cmp.Compare(a, 0) }
func (a Float64) String() string        { return fmt.Sprintf("%g", float64(a)) }

// Rat is an exact rational amount. The zero value is a usable 0.
type Rat struct {
	v big.Rat
}

// NewRat returns the rational num/den. It panics if den is zero, matching
// big.Rat.
func NewRat(num, den int64) Rat {
	var r Rat
	r.v.SetFrac64(num, den)
	return r
}

// RatFromInt returns n as an exact rational.
func RatFromInt(n int64) Rat {
	var r Rat
	r.v.SetInt64(n)
	return r
}

// RatFromFloat64 returns the exact rational value of f.
// It panics if f is an infinity or NaN.
func RatFromFloat64(f float64) Rat {
	var r Rat
	if r.v.SetFloat64(f) == nil {
		panic(fmt.Sprintf("numeric: cannot represent %g as a rational", f))
	}
	return r
}

// ParseRat parses a decimal string such as "2.53523463153", an exponent form
// such as "1e-9", or a fraction such as "1/3".
func ParseRat(s string) (Rat, error) {
	var r Rat
	if _, ok := r.v.SetString(s); !ok {
		return Rat{}, fmt.Errorf("numeric: cannot parse %q as a rational", s)
	}
	return r, nil
}

// MustParseRat is ParseRat for constant inputs; it panics on malformed input.
func MustParseRat(s string) Rat {
	r, err := ParseRat(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (a Rat) Add(b Rat) Rat {
	var out Rat
	out.v.Add(&a.v, &b.v)
	return out
}

func (a Rat) Sub(b Rat) Rat {
	var out Rat
	out.v.Sub(&a.v, &b.v)
	return out
}

func (a Rat) Cmp(b Rat) int { return a.v.Cmp(&b.v) }
func (a Rat) Sign() int     { return a.v.Sign() }

// Float64 returns the nearest floating-point value, for display purposes.
func (a Rat) Float64() float64 {
	f, _ := a.v.Float64()
	return f
}

func (a Rat) String() string { return a.v.RatString() }
