package hypergeom

import (
	"math"

	"github.com/ecanvass/hypergeom/internal/loggamma"
)

// Iteration cost of summing the lower tail exactly: simplifying the
// boundary fraction touches O(min(2N, 2n)) range elements, and every
// further term costs four integer updates.
func exactCDFCost(q Query) int64 {
	return min(q.N+q.N, q.Sample+q.Sample) + max(1, (q.K-1)*4)
}

// The upper-tail mirror: the seed sits at the top of the support, so
// the fraction size follows M−N and the walk length n−k.
func exactSFCost(q Query) int64 {
	c := q.M - q.N
	return min(c+c, q.Sample+q.Sample) + max(1, (q.Sample-q.K-1)*4)
}

// exactPMFCost prices a single point mass: the simplified fraction is
// O(2·min(k, n−k) + 2N) elements and there is no walk.
func exactPMFCost(q Query) int64 {
	if q.K <= q.Sample-q.K {
		return q.K + q.K + q.N + q.N
	}
	d := q.Sample - q.K
	return d + d + q.N + q.N
}

// approxPMFCost is flat: nine log-factorials, each a terms−1 step
// series.
func approxPMFCost(terms int) int64 {
	return int64(terms-1) * 9
}

// approxTailCost adds the walk from the nearer support edge to the
// flat boundary price.
func approxTailCost(q Query, terms int) int64 {
	return approxPMFCost(terms) + max(1, (min(q.K, q.Sample-q.K)-1)*4)
}

// Choose maps a query and operation to the cheapest strategy whose
// budget admits it, in fidelity order: exact, Lanczos, Spouge, then —
// for tails only — the normal approximation when the gate admits the
// query, and the float64 library tier as the catch-all.
func (e *Engine) Choose(q Query, op Op) Algorithm {
	b := e.cfg.Budgets

	if op == OpPMF {
		switch {
		case exactPMFCost(q) <= b.ExactIterations:
			return Exact
		case approxPMFCost(loggamma.Lanczos.Terms()) <= b.LanczosIterations:
			return Lanczos
		case approxPMFCost(loggamma.Spouge.Terms()) <= b.SpougeIterations:
			return Spouge
		}
		return LibraryReference
	}

	var exactCost int64
	switch op {
	case OpCDF:
		exactCost = exactCDFCost(q)
	case OpSF:
		exactCost = exactSFCost(q)
	default:
		// The score may need both tails.
		exactCost = exactCDFCost(q) + exactSFCost(q)
	}
	switch {
	case exactCost <= b.ExactIterations:
		return Exact
	case approxTailCost(q, loggamma.Lanczos.Terms()) <= b.LanczosIterations:
		return Lanczos
	case approxTailCost(q, loggamma.Spouge.Terms()) <= b.SpougeIterations:
		return Spouge
	case e.normalGateAdmits(q):
		return NormalTaylor
	}
	return LibraryReference
}

// normalGateAdmits applies the float64 plausibility gate for the
// normal approximation: sample large enough but small against the
// population, category split near even, and k at least MinTailSigmas
// standard deviations from the mean.
func (e *Engine) normalGateAdmits(q Query) bool {
	g := e.cfg.NormalGate
	if q.Sample < g.MinSample || float64(q.Sample) > g.MaxSampleShare*float64(q.M) {
		return false
	}
	share := float64(q.N) / float64(q.M)
	if share < 0.5-g.MaxImbalance || share > 0.5+g.MaxImbalance {
		return false
	}
	mu := float64(q.Sample) * share
	sigma := math.Sqrt(mu * (1 - share))
	k := float64(q.K)
	return k <= mu-g.MinTailSigmas*sigma || k >= mu+g.MinTailSigmas*sigma
}
