// Package rangeprod models a ratio of factorial-like products as
// ordered runs of consecutive integers, cancels shared run prefixes
// symbolically, and evaluates the remainder by interleaving
// multiplication and division so the accumulator stays near one.
//
// A factorial m! is the run [1, m]; after cancellation a falling
// product like m!/(m−j)! survives as [m−j+1, m]. Ratios of binomial
// coefficients built this way never materialize the factorials
// themselves, which is what keeps million-scale populations tractable
// at thousand-digit precision.
package rangeprod

// Range is the product of the consecutive integers Lo, Lo+1, …, Hi.
// A range with Hi < Lo is empty and contributes the neutral factor 1.
type Range struct {
	Lo, Hi int64
}

// Span returns the factorial range [1, hi]. Non-positive bounds clamp
// to the neutral [1, 1], modeling 0! = 1.
func Span(hi int64) Range {
	if hi < 1 {
		return Range{Lo: 1, Hi: 1}
	}
	return Range{Lo: 1, Hi: hi}
}

func (r Range) empty() bool { return r.Hi < r.Lo }

// A Fraction is a numerator/denominator pair of range lists. Simplify
// mutates the lists in place; Eval only reads them.
type Fraction struct {
	Num []Range
	Den []Range
}

// New assembles a fraction from its numerator and denominator ranges.
// The slices are retained, not copied.
func New(num, den []Range) *Fraction {
	return &Fraction{Num: num, Den: den}
}

// Simplify cancels the [1, u] prefixes shared between numerator and
// denominator. Each round pairs the largest unit-based range on either
// side: the side with the smaller upper bound is neutralized to [1, 1]
// and the larger side keeps only its uncancelled suffix. After
// min(len(Num), len(Den)) rounds no unit-based pair can still share a
// full common prefix.
func (f *Fraction) Simplify() {
	rounds := min(len(f.Num), len(f.Den))
	for i := 0; i < rounds; i++ {
		ni := largestUnitRange(f.Num)
		di := largestUnitRange(f.Den)
		if ni < 0 || di < 0 {
			return
		}
		nu, du := f.Num[ni].Hi, f.Den[di].Hi
		switch {
		case nu > du:
			f.Num[ni] = Range{Lo: du + 1, Hi: nu}
			f.Den[di] = Range{Lo: 1, Hi: 1}
		case du > nu:
			f.Den[di] = Range{Lo: nu + 1, Hi: du}
			f.Num[ni] = Range{Lo: 1, Hi: 1}
		default:
			f.Num[ni] = Range{Lo: 1, Hi: 1}
			f.Den[di] = Range{Lo: 1, Hi: 1}
		}
	}
}

// largestUnitRange returns the index of the range with Lo == 1 whose
// upper bound is largest, or -1 when no unit-based range remains.
func largestUnitRange(rs []Range) int {
	best := -1
	for i, r := range rs {
		if r.Lo != 1 {
			continue
		}
		if best < 0 || r.Hi > rs[best].Hi {
			best = i
		}
	}
	return best
}
