package hypergeom

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/ecanvass/hypergeom/internal/loggamma"
)

// approxPMFRaw evaluates the point mass in log space: nine
// log-factorials combined left to right with alternating signs, then
// exponentiated, all at computational precision. The term order
// follows the binomial expansion
// exp(−lg k! + lg (M−N)! − lg (n−k)! + lg N! − lg (N−k)! + lg n!
//     − lg M! + lg (M−n)! − lg (M−N−n+k)!).
func (e *Engine) approxPMFRaw(q Query, ap loggamma.Approximator, alg Algorithm) (*apd.Decimal, error) {
	k, M, N, n := q.K, q.M, q.N, q.Sample
	terms := []struct {
		z        int64
		subtract bool
	}{
		{k, true},
		{M - N, false},
		{n - k, true},
		{N, false},
		{N - k, true},
		{n, false},
		{M, true},
		{M - n, false},
		{M - N - n + k, true},
	}

	ed := apd.MakeErrDecimal(e.comp)
	sum := new(apd.Decimal)
	for i, t := range terms {
		lg, err := ap.LogFactorial(e.comp, t.z)
		if err != nil {
			return nil, NewArithmeticError(q, alg, "log-factorial evaluation", err)
		}
		switch {
		case i == 0:
			sum.Neg(lg)
		case t.subtract:
			ed.Sub(sum, sum, lg)
		default:
			ed.Add(sum, sum, lg)
		}
	}
	ed.Exp(sum, sum)
	if err := ed.Err(); err != nil {
		return nil, NewArithmeticError(q, alg, "log-space point mass", err)
	}
	return sum, nil
}
