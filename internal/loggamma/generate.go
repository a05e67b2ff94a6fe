package loggamma

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/ecanvass/hypergeom/internal/decmath"
	"github.com/ecanvass/hypergeom/internal/rangeprod"
)

// matrix is a dense decimal matrix, row-major. Entries are allocated
// to zero.
type matrix [][]*apd.Decimal

func newMatrix(rows, cols int) matrix {
	m := make(matrix, rows)
	for i := range m {
		m[i] = make([]*apd.Decimal, cols)
		for j := range m[i] {
			m[i][j] = new(apd.Decimal)
		}
	}
	return m
}

func matMul(ed *apd.ErrDecimal, l, r matrix) matrix {
	rows, inner, cols := len(l), len(r), len(r[0])
	p := newMatrix(rows, cols)
	t := new(apd.Decimal)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			s := p[i][j]
			for k := 0; k < inner; k++ {
				ed.Mul(t, l[i][k], r[k][j])
				ed.Add(s, s, t)
			}
		}
	}
	return p
}

// comb computes C(n, k) through the balanced range walker. Zero for
// k < 0, so callers can index past the triangle edge freely.
func comb(ctx *apd.Context, n, k int64) (*apd.Decimal, error) {
	switch {
	case k < 0:
		return apd.New(0, 0), nil
	case k >= n || k == 0:
		return apd.New(1, 0), nil
	case k == 1 || k == n-1:
		return new(apd.Decimal).SetInt64(n), nil
	}
	num := rangeprod.Range{Lo: n - k + 1, Hi: n}
	den := rangeprod.Range{Lo: 2, Hi: k}
	if k >= n-k {
		num = rangeprod.Range{Lo: k + 1, Hi: n}
		den = rangeprod.Range{Lo: 2, Hi: n - k}
	}
	return rangeprod.New([]rangeprod.Range{num}, []rangeprod.Range{den}).Eval(ctx)
}

// GenerateLanczos rebuilds an n-term Lanczos coefficient vector for
// shift g at the precision of ctx. The vector is the matrix product
// P = D·B·C·F: B holds signed binomials, C the Chebyshev coefficient
// triangle, D the doubling diagonal, and F the exponential column
// that carries g.
func GenerateLanczos(ctx *apd.Context, n int, g *apd.Decimal) ([]*apd.Decimal, error) {
	if n < 2 {
		return nil, fmt.Errorf("loggamma: lanczos table needs at least 2 terms, got %d", n)
	}
	b, err := lanczosB(ctx, n)
	if err != nil {
		return nil, err
	}
	c, err := lanczosC(ctx, n)
	if err != nil {
		return nil, err
	}
	d, err := lanczosD(ctx, n)
	if err != nil {
		return nil, err
	}
	f, err := lanczosF(ctx, n, g)
	if err != nil {
		return nil, err
	}

	ed := apd.MakeErrDecimal(ctx)
	p := matMul(&ed, matMul(&ed, matMul(&ed, d, b), c), f)
	if err := ed.Err(); err != nil {
		return nil, err
	}
	out := make([]*apd.Decimal, n)
	for i := range out {
		out[i] = p[i][0]
	}
	return out, nil
}

func lanczosB(ctx *apd.Context, n int) (matrix, error) {
	m := newMatrix(n, n)
	for c := 0; c < n; c++ {
		m[0][c].SetInt64(1)
	}
	for r := 1; r < n; r++ {
		for c := 0; c < n; c++ {
			v, err := comb(ctx, int64(r+c-1), int64(c-r))
			if err != nil {
				return nil, err
			}
			if (c-r)%2 != 0 {
				v.Neg(v)
			}
			m[r][c] = v
		}
	}
	return m, nil
}

func lanczosC(ctx *apd.Context, n int) (matrix, error) {
	m := newMatrix(n, n)
	ed := apd.MakeErrDecimal(ctx)
	t := new(apd.Decimal)
	for i := 1; i < n; i++ {
		for j := 0; j <= i; j++ {
			s := m[i][j]
			for k := 0; k <= i; k++ {
				a, err := comb(ctx, int64(2*i), int64(2*k))
				if err != nil {
					return nil, err
				}
				b, err := comb(ctx, int64(k), int64(k+j-i))
				if err != nil {
					return nil, err
				}
				ed.Mul(t, a, b)
				ed.Add(s, s, t)
			}
			if (i-j)%2 == 1 {
				s.Neg(s)
			}
		}
	}
	m[0][0].Set(apd.New(5, -1))
	return m, ed.Err()
}

func lanczosD(ctx *apd.Context, n int) (matrix, error) {
	m := newMatrix(n, n)
	ed := apd.MakeErrDecimal(ctx)
	m[0][0].SetInt64(1)
	m[1][1].SetInt64(-1)
	t := new(apd.Decimal)
	for i := 2; i < n; i++ {
		t.SetInt64(int64(2 * (2*i - 1)))
		ed.Mul(m[i][i], m[i-1][i-1], t)
		t.SetInt64(int64(i - 1))
		ed.Quo(m[i][i], m[i][i], t)
	}
	return m, ed.Err()
}

func lanczosF(ctx *apd.Context, n int, g *apd.Decimal) (matrix, error) {
	m := newMatrix(n, 1)
	ed := apd.MakeErrDecimal(ctx)
	half := apd.New(5, -1)
	four := apd.New(4, 0)
	t := new(apd.Decimal)
	w := new(apd.Decimal)
	for a := 0; a < n; a++ {
		f := m[a][0]
		f.SetInt64(2)
		for i := a + 1; i <= 2*a; i++ {
			t.SetInt64(int64(i))
			ed.Mul(f, f, t)
			ed.Quo(f, f, four)
		}
		// w = a + g + ½
		w.SetInt64(int64(a))
		ed.Add(w, w, g)
		ed.Add(w, w, half)
		ed.Exp(t, w)
		ed.Mul(f, f, t)
		ed.Pow(t, w, new(apd.Decimal).SetInt64(int64(a)))
		ed.Quo(f, f, t)
		ed.Sqrt(t, w)
		ed.Quo(f, f, t)
	}
	return m, ed.Err()
}

// GenerateSpouge rebuilds the Spouge coefficient vector for shift a at
// the precision of ctx: c₀ = √(2π) and
// c_k = (−1)^(k−1)·(a−k)^(k−½)·e^(a−k)/(k−1)!.
func GenerateSpouge(ctx *apd.Context, a int) ([]*apd.Decimal, error) {
	if a < 1 {
		return nil, fmt.Errorf("loggamma: spouge shift must be positive, got %d", a)
	}
	out := make([]*apd.Decimal, a)

	c0, err := decmath.SqrtTwoPi(ctx)
	if err != nil {
		return nil, err
	}
	out[0] = c0

	ed := apd.MakeErrDecimal(ctx)
	half := apd.New(5, -1)
	fact := apd.New(1, 0) // (k−1)!
	t := new(apd.Decimal)
	w := new(apd.Decimal)
	e := new(apd.Decimal)
	for k := 1; k < a; k++ {
		if k >= 2 {
			t.SetInt64(int64(k - 1))
			ed.Mul(fact, fact, t)
		}
		w.SetInt64(int64(a - k))
		exp := new(apd.Decimal).SetInt64(int64(k))
		ed.Sub(exp, exp, half)

		ck := new(apd.Decimal)
		ed.Pow(ck, w, exp)
		ed.Exp(e, w)
		ed.Mul(ck, ck, e)
		ed.Quo(ck, ck, fact)
		if (k-1)%2 == 1 {
			ck.Neg(ck)
		}
		out[k] = ck
	}
	return out, ed.Err()
}
