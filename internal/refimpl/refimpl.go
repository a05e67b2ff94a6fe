// Package refimpl is the float64 hypergeometric tier: log-binomial
// products for the point mass and incremental ratio walks for the
// tails. It trades configurable precision for library-grade float64
// fidelity and serves both as the selector's fallback strategy and as
// a cross-check oracle in tests.
package refimpl

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// lchoose returns log C(n, k), or -Inf when the binomial is empty so
// that exponentiation yields zero mass.
func lchoose(n, k int64) float64 {
	if n < 0 || k < 0 || k > n {
		return math.Inf(-1)
	}
	ln, _ := math.Lgamma(float64(n + 1))
	lk, _ := math.Lgamma(float64(k + 1))
	lr, _ := math.Lgamma(float64(n - k + 1))
	return ln - lk - lr
}

func valid(m, n, sample int64) bool {
	return m >= 0 && n >= 0 && sample >= 0 && n <= m && sample <= m
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Bounds returns the support [lo, hi] of the draw count for a
// population of m with n successes sampled sample times.
func Bounds(m, n, sample int64) (lo, hi int64) {
	return max(0, sample+n-m), min(sample, n)
}

// PMF returns P(X = k). Out-of-support k yields 0; a malformed
// population triple yields NaN.
func PMF(k, m, n, sample int64) float64 {
	if !valid(m, n, sample) {
		return math.NaN()
	}
	lo, hi := Bounds(m, n, sample)
	if k < lo || k > hi {
		return 0
	}
	return math.Exp(lchoose(n, k) + lchoose(m-n, sample-k) - lchoose(m, sample))
}

// tailBelow accumulates P(X <= k) walking up from the bottom of the
// support, updating the point mass by its neighbor ratio at each step.
func tailBelow(k, m, n, sample int64) float64 {
	lo, hi := Bounds(m, n, sample)
	if k > hi {
		k = hi
	}
	p := PMF(lo, m, n, sample)
	sum := p
	for i := lo + 1; i <= k; i++ {
		p *= float64(sample-i+1) * float64(n-i+1)
		p /= float64(m-n-sample+i) * float64(i)
		sum += p
	}
	return sum
}

// tailAbove accumulates P(X > k) walking down from the top of the
// support.
func tailAbove(k, m, n, sample int64) float64 {
	lo, hi := Bounds(m, n, sample)
	if k < lo {
		k = lo - 1
	}
	p := PMF(hi, m, n, sample)
	sum := p
	for i := hi - 1; i > k; i-- {
		p *= float64(m-n-sample+i+1) * float64(i+1)
		p /= float64(sample-i) * float64(n-i)
		sum += p
	}
	return sum
}

// CDF returns P(X <= k), walking whichever tail is shorter and
// complementing when the upper tail wins. With half set the boundary
// mass contributes only half, the tie-splitting two-sided convention.
func CDF(k, m, n, sample int64, half bool) float64 {
	if !valid(m, n, sample) {
		return math.NaN()
	}
	lo, hi := Bounds(m, n, sample)
	var cdf float64
	switch {
	case k < lo:
		return 0
	case k >= hi:
		cdf = 1
	case k-lo <= hi-k:
		cdf = tailBelow(k, m, n, sample)
	default:
		cdf = 1 - tailAbove(k, m, n, sample)
	}
	if half {
		cdf -= PMF(k, m, n, sample) / 2
	}
	return clamp01(cdf)
}

// SF returns P(X > k), the strict upper tail. With half set, half the
// boundary mass at k is added back.
func SF(k, m, n, sample int64, half bool) float64 {
	if !valid(m, n, sample) {
		return math.NaN()
	}
	lo, hi := Bounds(m, n, sample)
	var sf float64
	switch {
	case k >= hi:
		sf = 0
	case k < lo:
		return 1
	case hi-k <= k-lo:
		sf = tailAbove(k, m, n, sample)
	default:
		sf = 1 - tailBelow(k, m, n, sample)
	}
	if half {
		sf += PMF(k, m, n, sample) / 2
	}
	return clamp01(sf)
}

// Score returns min(CDF, SF) with half-boundary tie splitting, the
// two-sided outlier probability.
func Score(k, m, n, sample int64) float64 {
	return min(CDF(k, m, n, sample, true), SF(k, m, n, sample, true))
}

// NormalCDF returns the standard normal CDF at z.
func NormalCDF(z float64) float64 {
	return distuv.UnitNormal.CDF(z)
}

// NormalSF returns the standard normal survival function at z.
func NormalSF(z float64) float64 {
	return distuv.UnitNormal.Survival(z)
}
