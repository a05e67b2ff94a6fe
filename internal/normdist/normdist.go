// Package normdist evaluates the standard normal CDF and survival
// function in decimal arithmetic. Two evaluators are provided: a
// Taylor-series integral of the density, which honors the working
// precision and is the one the engine dispatches, and a fast
// rational/continued-fraction form for quick estimates. Both take a
// standardized argument; converting a hypergeometric query into one is
// the caller's job.
package normdist

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/ecanvass/hypergeom/internal/decmath"
)

// maxSeriesTerms caps the Taylor summation. The series is entered only
// for |z| ≤ 11, where a few hundred terms reach any practical
// tolerance, so hitting the cap means the tolerance is unattainable at
// the configured precision.
const maxSeriesTerms = 10000

// ErrNoConvergence reports a Taylor summation that hit maxSeriesTerms
// with terms still above tolerance.
var ErrNoConvergence = errors.New("normdist: taylor series did not converge")

// Normal evaluates the standard normal distribution under one decimal
// context. Construction pays the π summation once; the tolerance is
// derived from the computational and reporting precisions as
// 10^(−min/2).
type Normal struct {
	ctx       *apd.Context
	tol       *apd.Decimal
	sqrtTwoPi *apd.Decimal
}

func New(ctx *apd.Context, reporting uint32) (*Normal, error) {
	pi, err := decmath.Pi(ctx)
	if err != nil {
		return nil, fmt.Errorf("normdist: %w", err)
	}
	ed := apd.MakeErrDecimal(ctx)
	two := apd.New(2, 0)

	sqrtTwoPi := new(apd.Decimal)
	ed.Mul(sqrtTwoPi, two, pi)
	ed.Sqrt(sqrtTwoPi, sqrtTwoPi)

	tol := new(apd.Decimal).SetInt64(-min(int64(ctx.Precision), int64(reporting)))
	ed.Quo(tol, tol, two)
	ed.Pow(tol, apd.New(10, 0), tol)
	ed.Abs(tol, tol)

	if err := ed.Err(); err != nil {
		return nil, fmt.Errorf("normdist: %w", err)
	}
	return &Normal{ctx: ctx, tol: tol, sqrtTwoPi: sqrtTwoPi}, nil
}

// Tolerance returns the convergence threshold the Taylor series sums
// against.
func (n *Normal) Tolerance() *apd.Decimal {
	return n.tol
}

// PDF returns the density exp(−z²/2)/√(2π).
func (n *Normal) PDF(z *apd.Decimal) (*apd.Decimal, error) {
	ed := apd.MakeErrDecimal(n.ctx)
	out := new(apd.Decimal)
	ed.Mul(out, z, z)
	ed.Quo(out, out, apd.New(-2, 0))
	ed.Exp(out, out)
	ed.Quo(out, out, n.sqrtTwoPi)
	if err := ed.Err(); err != nil {
		return nil, fmt.Errorf("normdist: density at %s: %w", z, err)
	}
	return out, nil
}

// TaylorCDF returns P(Z ≤ z). Arguments beyond ±11 clamp to the
// nearest bound; the mass outside is below any tolerance the
// constructor can produce.
func (n *Normal) TaylorCDF(z *apd.Decimal) (*apd.Decimal, error) {
	if z.Cmp(apd.New(11, 0)) > 0 {
		return apd.New(1, 0), nil
	}
	if z.Cmp(apd.New(-11, 0)) < 0 {
		return apd.New(0, 0), nil
	}
	adj, err := n.adjustment(z)
	if err != nil {
		return nil, err
	}
	out := new(apd.Decimal)
	ed := apd.MakeErrDecimal(n.ctx)
	ed.Add(out, apd.New(5, -1), adj)
	if err := ed.Err(); err != nil {
		return nil, err
	}
	return decmath.Clamp01(out), nil
}

// TaylorSF returns P(Z > z) evaluated directly from the same series,
// not as 1 − CDF.
func (n *Normal) TaylorSF(z *apd.Decimal) (*apd.Decimal, error) {
	if z.Cmp(apd.New(11, 0)) > 0 {
		return apd.New(0, 0), nil
	}
	if z.Cmp(apd.New(-11, 0)) < 0 {
		return apd.New(1, 0), nil
	}
	adj, err := n.adjustment(z)
	if err != nil {
		return nil, err
	}
	out := new(apd.Decimal)
	ed := apd.MakeErrDecimal(n.ctx)
	ed.Sub(out, apd.New(5, -1), adj)
	if err := ed.Err(); err != nil {
		return nil, err
	}
	return decmath.Clamp01(out), nil
}

// adjustment integrates the density from 0 to |z| term by term and
// returns the signed deviation of the CDF from ½:
// sign(z)·(1/√(2π))·Σ (−1)^j |z|^(2j+1) / (j!·2^j·(2j+1)).
// Each term's coefficient is built incrementally from the running
// power pair, and summation stops once a term falls under tolerance.
func (n *Normal) adjustment(z *apd.Decimal) (*apd.Decimal, error) {
	ed := apd.MakeErrDecimal(n.ctx)
	one := apd.New(1, 0)
	two := apd.New(2, 0)

	az := new(apd.Decimal).Abs(z)
	integral := new(apd.Decimal).Set(az)
	currPow := apd.New(2, 0)
	cumPow := apd.New(-2, 0)
	adj := new(apd.Decimal).Neg(az)

	var (
		coeff  = new(apd.Decimal)
		pow    = new(apd.Decimal)
		t      = new(apd.Decimal)
		absAdj = new(apd.Decimal)
	)
	for terms := 0; ; terms++ {
		if absAdj.Abs(adj); absAdj.Cmp(n.tol) < 0 {
			break
		}
		if terms >= maxSeriesTerms {
			return nil, fmt.Errorf("%w after %d terms at tolerance %s",
				ErrNoConvergence, maxSeriesTerms, n.tol.Text('E'))
		}
		ed.Add(t, currPow, one)
		ed.Mul(coeff, cumPow, t)
		ed.Quo(coeff, one, coeff)
		ed.Pow(pow, az, t)
		ed.Mul(adj, coeff, pow)
		ed.Add(integral, integral, adj)
		ed.Add(currPow, currPow, two)
		t.Neg(currPow)
		ed.Mul(cumPow, cumPow, t)
	}

	out := new(apd.Decimal)
	ed.Quo(out, one, n.sqrtTwoPi)
	ed.Mul(out, out, integral)
	if err := ed.Err(); err != nil {
		return nil, err
	}
	if z.Sign() < 0 {
		out.Neg(out)
	}
	return out, nil
}
