package decmath

import "github.com/cockroachdb/apd/v3"

// Pi computes π to the precision of ctx using the Bailey-Borwein-Plouffe
// series. Each term contributes one hexadecimal digit, so the loop runs
// precision+1 times with two guard digits and rounds back down on exit.
func Pi(ctx *apd.Context) (*apd.Decimal, error) {
	digits := int64(ctx.Precision)
	work := Context(ctx.Precision + 2)
	ed := apd.MakeErrDecimal(work)

	var (
		pi      = apd.New(0, 0)
		frac    = apd.New(1, 0) // 1/16^i
		sixteen = apd.New(16, 0)
		num     = new(apd.Decimal)
		den     = new(apd.Decimal)
		term    = new(apd.Decimal)
		t       = new(apd.Decimal)
	)
	for i := int64(0); i <= digits; i++ {
		k := 8 * i
		// 4/(8i+1) − 2/(8i+4) − 1/(8i+5) − 1/(8i+6)
		num.SetInt64(4)
		den.SetInt64(k + 1)
		ed.Quo(term, num, den)
		num.SetInt64(2)
		den.SetInt64(k + 4)
		ed.Quo(t, num, den)
		ed.Sub(term, term, t)
		num.SetInt64(1)
		den.SetInt64(k + 5)
		ed.Quo(t, num, den)
		ed.Sub(term, term, t)
		den.SetInt64(k + 6)
		ed.Quo(t, num, den)
		ed.Sub(term, term, t)

		ed.Mul(term, term, frac)
		ed.Add(pi, pi, term)
		ed.Quo(frac, frac, sixteen)
	}
	if err := ed.Err(); err != nil {
		return nil, err
	}
	out := new(apd.Decimal)
	if _, err := ctx.Round(out, pi); err != nil {
		return nil, err
	}
	return out, nil
}

// SqrtTwoPi computes √(2π) to the precision of ctx. The product and
// root are taken with two guard digits so the single rounding on exit
// is decided by the true value rather than by accumulated error.
func SqrtTwoPi(ctx *apd.Context) (*apd.Decimal, error) {
	work := Context(ctx.Precision + 2)
	pi, err := Pi(work)
	if err != nil {
		return nil, err
	}
	ed := apd.MakeErrDecimal(work)
	out := new(apd.Decimal)
	ed.Mul(out, pi, apd.New(2, 0))
	ed.Sqrt(out, out)
	if err := ed.Err(); err != nil {
		return nil, err
	}
	if _, err := ctx.Round(out, out); err != nil {
		return nil, err
	}
	return out, nil
}
