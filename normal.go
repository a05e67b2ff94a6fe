package hypergeom

import (
	"errors"

	"github.com/cockroachdb/apd/v3"

	"github.com/ecanvass/hypergeom/internal/normdist"
)

// normalTier serves CDF, SF and Score through the Taylor expansion of
// the normal integral, and PMF through the normal density.
func (e *Engine) normalTier(q Query, op Op, half bool) (*apd.Decimal, error) {
	switch op {
	case OpPMF:
		return e.normalPMF(q)
	case OpCDF, OpSF:
		return e.normalTail(q, op, half)
	}
	return e.normalMin(q)
}

// normalZ standardizes the query at computational precision:
// z = (k_adj − μ)/σ with μ = n·(N/M) and σ = √(μ·(1 − N/M)).
// Half mode scores k itself; a full tail applies the continuity
// correction k − ½. A zero σ collapses z to 0.
func (e *Engine) normalZ(q Query, half bool) (*apd.Decimal, error) {
	ed := apd.MakeErrDecimal(e.comp)

	p := new(apd.Decimal)
	ed.Quo(p, new(apd.Decimal).SetInt64(q.N), new(apd.Decimal).SetInt64(q.M))
	pc := new(apd.Decimal)
	ed.Sub(pc, decOne, p)
	mu := new(apd.Decimal)
	ed.Mul(mu, new(apd.Decimal).SetInt64(q.Sample), p)
	sigma := new(apd.Decimal)
	ed.Mul(sigma, mu, pc)
	ed.Sqrt(sigma, sigma)

	kAdj := new(apd.Decimal).SetInt64(q.K)
	if !half {
		ed.Sub(kAdj, kAdj, decHalf)
	}
	z := new(apd.Decimal)
	if sigma.Sign() != 0 {
		ed.Sub(z, kAdj, mu)
		ed.Quo(z, z, sigma)
	}
	if err := ed.Err(); err != nil {
		return nil, NewArithmeticError(q, NormalTaylor, "standardizing query", err)
	}
	return z, nil
}

// normalTail evaluates one tail on the Taylor path and rounds it to
// reporting precision. Collapsed supports short-circuit to certainty
// except in half mode, where σ = 0 drives z to 0 and the series
// reports an even split of the single point mass.
func (e *Engine) normalTail(q Query, side Op, half bool) (*apd.Decimal, error) {
	k, M, N, n := q.K, q.M, q.N, q.Sample
	if (M == n || M == N || N == k || n == 0 || N == 0) && !half {
		if side == OpCDF {
			return apd.New(1, 0), nil
		}
		return apd.New(0, 0), nil
	}

	z, err := e.normalZ(q, half)
	if err != nil {
		return nil, err
	}
	var out *apd.Decimal
	if side == OpCDF {
		out, err = e.normal.TaylorCDF(z)
	} else {
		out, err = e.normal.TaylorSF(z)
	}
	if err != nil {
		if errors.Is(err, normdist.ErrNoConvergence) {
			return nil, NewConvergenceError(q, NormalTaylor, e.normal.Tolerance(), err)
		}
		return nil, NewArithmeticError(q, NormalTaylor, "taylor expansion", err)
	}
	if _, err := e.report.Round(out, out); err != nil {
		return nil, NewArithmeticError(q, NormalTaylor, "rounding tail", err)
	}
	return out, nil
}

// normalMin is the two-sided score on the Taylor path. The cumulative
// side always goes first; its complement is only evaluated when the
// first lands at ½ or above.
func (e *Engine) normalMin(q Query) (*apd.Decimal, error) {
	cdf, err := e.normalTail(q, OpCDF, true)
	if err != nil {
		return nil, err
	}
	if cdf.Cmp(decHalf) < 0 {
		return cdf, nil
	}
	sf, err := e.normalTail(q, OpSF, true)
	if err != nil {
		return nil, err
	}
	if sf.Cmp(cdf) < 0 {
		return sf, nil
	}
	return cdf, nil
}

// normalPMF approximates the point mass with the normal density at
// the uncorrected standard score.
func (e *Engine) normalPMF(q Query) (*apd.Decimal, error) {
	z, err := e.normalZ(q, true)
	if err != nil {
		return nil, err
	}
	d, err := e.normal.PDF(z)
	if err != nil {
		return nil, NewArithmeticError(q, NormalTaylor, "density evaluation", err)
	}
	return d, nil
}
