package loggamma

import "github.com/cockroachdb/apd/v3"

// Spouge is the pinned 20-term Spouge approximation (a = 20).
var Spouge Approximator = &spougeApprox{
	a:      DefaultSpougeTerms,
	coeffs: parseTable(spougeLiterals[:]),
}

type spougeApprox struct {
	a      int64
	coeffs []*apd.Decimal
}

func (s *spougeApprox) Name() string { return "spouge" }
func (s *spougeApprox) Terms() int   { return len(s.coeffs) }

// LogFactorial evaluates ln z! as (z+½)·ln(z+a) − (z+a) + ln(c₀ + Σ
// cᵢ/(z+i)).
func (s *spougeApprox) LogFactorial(ctx *apd.Context, z int64) (*apd.Decimal, error) {
	ed := apd.MakeErrDecimal(ctx)

	series := new(apd.Decimal).Set(s.coeffs[0])
	t := new(apd.Decimal)
	den := new(apd.Decimal)
	for i, c := range s.coeffs[1:] {
		den.SetInt64(z + int64(i) + 1)
		ed.Quo(t, c, den)
		ed.Add(series, series, t)
	}

	// w = z + a
	w := new(apd.Decimal).SetInt64(z + s.a)

	out := new(apd.Decimal)
	ed.Ln(out, w)
	half := apd.New(5, -1)
	zh := new(apd.Decimal).SetInt64(z)
	ed.Add(zh, zh, half)
	ed.Mul(out, out, zh)
	ed.Sub(out, out, w)
	ed.Ln(t, series)
	ed.Add(out, out, t)
	return out, ed.Err()
}
