package hypergeom

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/ecanvass/hypergeom/internal/decmath"
	"github.com/ecanvass/hypergeom/internal/loggamma"
)

// tier binds a boundary-PMF evaluator to its iteration budget. A nil
// approximator means exact factorial-range products.
type tier struct {
	alg    Algorithm
	budget int64
	approx loggamma.Approximator
}

func (e *Engine) exactTier() tier {
	return tier{alg: Exact, budget: e.cfg.Budgets.ExactIterations}
}

func (e *Engine) lanczosTier() tier {
	return tier{alg: Lanczos, budget: e.cfg.Budgets.LanczosIterations, approx: loggamma.Lanczos}
}

func (e *Engine) spougeTier() tier {
	return tier{alg: Spouge, budget: e.cfg.Budgets.SpougeIterations, approx: loggamma.Spouge}
}

// cdfSideCheap reports which tail is cheaper to sum from scratch. The
// exact tier compares full simplification-plus-walk costs; the
// log-gamma tiers pay a flat price for any boundary, so only the walk
// length k versus n−k matters.
func (t tier) cdfSideCheap(q Query) bool {
	if t.approx == nil {
		return exactCDFCost(q) <= exactSFCost(q)
	}
	return q.K <= q.Sample-q.K
}

// boundaryPMF computes the point mass at support index i at full
// computational precision, as a seed for the neighbor-ratio walk.
func (e *Engine) boundaryPMF(q Query, i int64, t tier) (*apd.Decimal, error) {
	bq := Query{K: i, M: q.M, N: q.N, Sample: q.Sample}
	if t.approx == nil {
		return e.exactPMFRaw(bq)
	}
	return e.approxPMFRaw(bq, t.approx, t.alg)
}

// halfBoundaryPMF serves the degenerate gates: the point mass at k
// is rounded to reporting precision first and then halved. Unlike the
// walk seeds this one rounds early, because a collapsed support
// reports nothing but this single mass.
func (e *Engine) halfBoundaryPMF(q Query, t tier) (*apd.Decimal, error) {
	pmf, err := e.boundaryPMF(q, q.K, t)
	if err != nil {
		return nil, err
	}
	if _, err := e.report.Round(pmf, pmf); err != nil {
		return nil, NewArithmeticError(q, t.alg, "rounding boundary mass", err)
	}
	if _, err := e.comp.Quo(pmf, pmf, decTwo); err != nil {
		return nil, NewArithmeticError(q, t.alg, "halving boundary mass", err)
	}
	return pmf, nil
}

// tailSum evaluates one tail: OpCDF is P(X ≤ k), OpSF is P(X > k),
// and in half mode the boundary mass is split evenly between the two.
// The result is rounded to reporting precision and clamped to [0,1],
// so complements taken on it afterwards stay exact.
func (e *Engine) tailSum(q Query, side Op, half bool, t tier) (*apd.Decimal, error) {
	k, M, N, n := q.K, q.M, q.N, q.Sample

	var out *apd.Decimal
	var err error
	switch {
	case M == n || M == N || N == k || (M-N == n-k && half) || n == 0 || N == 0:
		out, err = e.collapsedTail(q, side, half, t)
	case side == OpCDF:
		out, err = e.walkUp(q, half, t)
	default:
		out, err = e.walkDown(q, half, t)
	}
	if err != nil {
		return nil, err
	}
	if _, err := e.report.Round(out, out); err != nil {
		return nil, NewArithmeticError(q, t.alg, "rounding tail", err)
	}
	return decmath.Clamp01(out), nil
}

// collapsedTail handles supports reduced to the boundary index: k
// pinned to the top by M = n, M = N, N = k, n = 0 or N = 0, or to the
// bottom when M−N = n−k in half mode. A full tail is then plain
// certainty; a half tail gives up half the point mass to the other
// side.
func (e *Engine) collapsedTail(q Query, side Op, half bool, t tier) (*apd.Decimal, error) {
	var halfPmf *apd.Decimal
	if half {
		var err error
		halfPmf, err = e.halfBoundaryPMF(q, t)
		if err != nil {
			return nil, err
		}
	}

	out := new(apd.Decimal)
	atBottom := half && q.M-q.N == q.Sample-q.K
	ed := apd.MakeErrDecimal(e.comp)
	switch {
	case atBottom && side == OpCDF:
		out.Set(halfPmf)
	case atBottom:
		ed.Sub(out, decOne, halfPmf)
	case side == OpCDF:
		out.Set(decOne)
		if half {
			ed.Sub(out, out, halfPmf)
		}
	default:
		if half {
			out.Set(halfPmf)
		}
	}
	if err := ed.Err(); err != nil {
		return nil, NewArithmeticError(q, t.alg, "collapsed support", err)
	}
	return out, nil
}

// walkUp seeds the point mass at the bottom of the support and
// advances it to k with the neighbor ratio
// pmf(i)/pmf(i−1) = (n−i+1)(N−i+1) / ((M−N−n+i)·i),
// accumulating the lower tail. Both ratio factors are exact int64
// products, so each step costs one decimal multiply and one divide.
func (e *Engine) walkUp(q Query, half bool, t tier) (*apd.Decimal, error) {
	k, M, N, n := q.K, q.M, q.N, q.Sample

	iFirst := max(0, n+N-M)
	if steps := k - iFirst; steps > t.budget {
		return nil, NewIterationLimitError(q, t.alg, steps, t.budget)
	}
	pmf, err := e.boundaryPMF(q, iFirst, t)
	if err != nil {
		return nil, err
	}

	ed := apd.MakeErrDecimal(e.comp)
	if half && iFirst >= k {
		ed.Quo(pmf, pmf, decTwo)
	}
	cdf := new(apd.Decimal)
	if iFirst <= k {
		cdf.Set(pmf)
	}

	factor := new(apd.Decimal)
	for i := iFirst + 1; i <= k; i++ {
		factor.SetInt64((n - i + 1) * (N - i + 1))
		ed.Mul(pmf, pmf, factor)
		factor.SetInt64((M - N - n + i) * i)
		ed.Quo(pmf, pmf, factor)
		if half && i == k {
			ed.Quo(pmf, pmf, decTwo)
		}
		ed.Add(cdf, cdf, pmf)
	}
	if err := ed.Err(); err != nil {
		return nil, NewArithmeticError(q, t.alg, "cumulative walk", err)
	}
	return cdf, nil
}

// walkDown is the mirror image: seed at the top of the support, step
// down to k with the inverted ratio, accumulating the upper tail.
// Without half mode the mass at k itself is excluded, so k = n short
// circuits to zero before any boundary work.
func (e *Engine) walkDown(q Query, half bool, t tier) (*apd.Decimal, error) {
	k, M, N, n := q.K, q.M, q.N, q.Sample

	if !half && k == n {
		return new(apd.Decimal), nil
	}
	iLast := min(n, N)
	if steps := iLast - k; steps > t.budget {
		return nil, NewIterationLimitError(q, t.alg, steps, t.budget)
	}
	pmf, err := e.boundaryPMF(q, iLast, t)
	if err != nil {
		return nil, err
	}

	ed := apd.MakeErrDecimal(e.comp)
	if half && iLast <= k {
		ed.Quo(pmf, pmf, decTwo)
	}
	sf := new(apd.Decimal)
	if iLast > k || (half && iLast == k) {
		sf.Set(pmf)
	}

	factor := new(apd.Decimal)
	for i := iLast - 1; i >= k; i-- {
		if i > k || half {
			factor.SetInt64((M - N - n + i + 1) * (i + 1))
			ed.Mul(pmf, pmf, factor)
			factor.SetInt64((n - i) * (N - i))
			ed.Quo(pmf, pmf, factor)
			if half && i == k {
				ed.Quo(pmf, pmf, decTwo)
			}
			ed.Add(sf, sf, pmf)
		}
	}
	if err := ed.Err(); err != nil {
		return nil, NewArithmeticError(q, t.alg, "survival walk", err)
	}
	return sf, nil
}

// tailPair answers one requested tail by summing whichever side is
// cheaper. When the cheap side is the other one and its mass came out
// under ½, the complement is good enough: the value is already
// rounded to reporting precision, so 1 − value is exact. A cheap-side
// mass of ½ or more would lose relative accuracy in the subtraction,
// so the requested side is then summed directly.
func (e *Engine) tailPair(q Query, side Op, half bool, t tier) (*apd.Decimal, error) {
	cheap := OpSF
	if t.cdfSideCheap(q) {
		cheap = OpCDF
	}
	val, err := e.tailSum(q, cheap, half, t)
	if err != nil {
		return nil, err
	}
	if cheap == side {
		return val, nil
	}
	if val.Cmp(decHalf) < 0 {
		if _, err := e.comp.Sub(val, decOne, val); err != nil {
			return nil, NewArithmeticError(q, t.alg, "tail complement", err)
		}
		return val, nil
	}
	return e.tailSum(q, side, half, t)
}

// minTail is the two-sided outlier score: the smaller of the two half
// tails. The cheaper side goes first and settles the answer alone
// whenever it lands under ½.
func (e *Engine) minTail(q Query, t tier) (*apd.Decimal, error) {
	first, second := OpSF, OpCDF
	if t.cdfSideCheap(q) {
		first, second = OpCDF, OpSF
	}
	a, err := e.tailSum(q, first, true, t)
	if err != nil {
		return nil, err
	}
	if a.Cmp(decHalf) < 0 {
		return a, nil
	}
	b, err := e.tailSum(q, second, true, t)
	if err != nil {
		return nil, err
	}
	if b.Cmp(a) < 0 {
		return b, nil
	}
	return a, nil
}
