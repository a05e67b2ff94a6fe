package loggamma

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/ecanvass/hypergeom/internal/decmath"
)

// Lanczos is the pinned 13-term Lanczos approximation with shift
// g = 6.02468.
var Lanczos Approximator = &lanczosApprox{
	g:      decmath.MustParse(lanczosShift),
	coeffs: parseTable(lanczosLiterals[:]),
}

type lanczosApprox struct {
	g      *apd.Decimal
	coeffs []*apd.Decimal
}

func (l *lanczosApprox) Name() string { return "lanczos" }
func (l *lanczosApprox) Terms() int   { return len(l.coeffs) }

// LogFactorial evaluates ln z! as ln r(z) + (z+½)·ln(z+g+½) − (z+g+½)
// with the rational series r(z) = p₀ + Σ pᵢ/(z+i).
func (l *lanczosApprox) LogFactorial(ctx *apd.Context, z int64) (*apd.Decimal, error) {
	ed := apd.MakeErrDecimal(ctx)

	r := new(apd.Decimal).Set(l.coeffs[0])
	t := new(apd.Decimal)
	den := new(apd.Decimal)
	for i, p := range l.coeffs[1:] {
		den.SetInt64(z + int64(i) + 1)
		ed.Quo(t, p, den)
		ed.Add(r, r, t)
	}

	// w = z + g + ½
	half := apd.New(5, -1)
	w := new(apd.Decimal).SetInt64(z)
	ed.Add(w, w, l.g)
	ed.Add(w, w, half)

	out := new(apd.Decimal)
	ed.Ln(out, r)
	lnw := new(apd.Decimal)
	ed.Ln(lnw, w)
	zh := new(apd.Decimal).SetInt64(z)
	ed.Add(zh, zh, half)
	ed.Mul(lnw, lnw, zh)
	ed.Add(out, out, lnw)
	ed.Sub(out, out, w)
	return out, ed.Err()
}
