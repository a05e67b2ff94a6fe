package normdist

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/ecanvass/hypergeom/internal/decmath"
)

// Hart-style rational approximation of the upper tail, switching to a
// Laplace continued fraction past x ≈ √50 and to zero past 36.5. The
// rational form targets the right tail; left of about −1 its error
// grows quickly and by −3 the clamp floors it, so CDF callers should
// treat results near the wrong tail as order-of-magnitude only.
var (
	hartNum = parseHart([]string{
		"3.52624965998911e-02",
		"0.700383064443688",
		"6.37396220353165",
		"33.912866078383",
		"112.079291497871",
		"221.213596169931",
		"220.206867912376",
	})
	hartDen = parseHart([]string{
		"8.83883476483184e-02",
		"1.75566716318264",
		"16.064177579207",
		"86.7807322029461",
		"296.564248779674",
		"637.333633378831",
		"793.826512519948",
		"440.413735824752",
	})
	hartPolyCutoff = decmath.MustParse("7.07106781186546")
	hartZeroCutoff = decmath.MustParse("36.5")
)

func parseHart(ss []string) []*apd.Decimal {
	out := make([]*apd.Decimal, len(ss))
	for i, s := range ss {
		out[i] = decmath.MustParse(s)
	}
	return out
}

// FastCDF returns P(Z ≤ z) through the upper-tail form evaluated at
// −z.
func (n *Normal) FastCDF(z *apd.Decimal) (*apd.Decimal, error) {
	return n.fastTail(new(apd.Decimal).Neg(z))
}

// FastSF returns P(Z > z).
func (n *Normal) FastSF(z *apd.Decimal) (*apd.Decimal, error) {
	return n.fastTail(z)
}

func (n *Normal) fastTail(x *apd.Decimal) (*apd.Decimal, error) {
	if x.Cmp(hartZeroCutoff) > 0 {
		return apd.New(0, 0), nil
	}
	ed := apd.MakeErrDecimal(n.ctx)
	one := apd.New(1, 0)
	two := apd.New(2, 0)

	// e = exp(−x²/2)
	e := new(apd.Decimal).Neg(x)
	ed.Mul(e, e, x)
	ed.Quo(e, e, two)
	ed.Exp(e, e)

	out := new(apd.Decimal)
	if x.Cmp(hartPolyCutoff) < 0 {
		num := new(apd.Decimal).Set(hartNum[0])
		for _, c := range hartNum[1:] {
			ed.Mul(num, num, x)
			ed.Add(num, num, c)
		}
		den := new(apd.Decimal).Set(hartDen[0])
		for _, c := range hartDen[1:] {
			ed.Mul(den, den, x)
			ed.Add(den, den, c)
		}
		ed.Quo(out, num, den)
		ed.Mul(out, e, out)
	} else {
		t := new(apd.Decimal)
		u := new(apd.Decimal)
		ed.Quo(t, apd.New(13, 0), apd.New(20, 0))
		for _, c := range []*apd.Decimal{apd.New(4, 0), apd.New(3, 0), two, one} {
			ed.Add(u, x, t)
			ed.Quo(t, c, u)
		}
		ed.Add(u, x, t)
		ed.Mul(u, n.sqrtTwoPi, u)
		ed.Quo(out, one, u)
		ed.Mul(out, e, out)
	}
	if err := ed.Err(); err != nil {
		return nil, err
	}
	return decmath.Clamp01(out), nil
}
