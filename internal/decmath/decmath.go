// Package decmath holds the shared arbitrary-precision primitives used
// by every evaluation strategy: context construction with the engine's
// rounding and trap conventions, exact literal parsing, and the few
// transcendental constants (π, √(2π)) that the approximators need.
package decmath

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// engineTraps raises invalid operations and division faults as errors.
// Underflow and inexactness are deliberately untrapped: a tail
// probability smaller than the exponent range flushes quietly to zero
// instead of failing the whole query.
const engineTraps = apd.SystemOverflow |
	apd.SystemUnderflow |
	apd.Overflow |
	apd.DivisionUndefined |
	apd.DivisionByZero |
	apd.DivisionImpossible |
	apd.InvalidOperation

// Context returns an apd context carrying prec significant digits with
// half-even rounding and the widest supported exponent range. All
// engine arithmetic, computational and reporting, goes through
// contexts built here so the trap policy is defined exactly once.
func Context(prec uint32) *apd.Context {
	return &apd.Context{
		Precision:   prec,
		MaxExponent: apd.MaxExponent,
		MinExponent: apd.MinExponent,
		Rounding:    apd.RoundHalfEven,
		Traps:       engineTraps,
	}
}

// MustParse converts an exact decimal literal into a Decimal without
// rounding. It panics on malformed input and is reserved for
// compile-time constants such as the coefficient tables.
func MustParse(s string) *apd.Decimal {
	d, _, err := new(apd.Decimal).SetString(s)
	if err != nil {
		panic(fmt.Sprintf("decmath: invalid decimal literal %q: %v", s, err))
	}
	return d
}

var (
	zero = apd.New(0, 0)
	one  = apd.New(1, 0)
)

// Clamp01 clips d into [0, 1] in place and returns it. Values within
// the interval, and non-finite values, pass through untouched.
func Clamp01(d *apd.Decimal) *apd.Decimal {
	if d.Form != apd.Finite {
		return d
	}
	if d.Sign() < 0 {
		d.Set(zero)
	} else if d.Cmp(one) > 0 {
		d.Set(one)
	}
	return d
}
