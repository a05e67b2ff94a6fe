package hypergeom

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/ecanvass/hypergeom/internal/rangeprod"
)

// exactPMFRaw evaluates C(N,k)·C(M−N,n−k)/C(M,n) as a simplified
// ratio of factorial ranges, at full computational precision. The
// caller is responsible for k being inside the support.
func (e *Engine) exactPMFRaw(q Query) (*apd.Decimal, error) {
	k, M, N, n := q.K, q.M, q.N, q.Sample
	f := rangeprod.New(
		[]rangeprod.Range{
			rangeprod.Span(n),
			rangeprod.Span(N),
			rangeprod.Span(M - N),
			rangeprod.Span(M - n),
		},
		[]rangeprod.Range{
			rangeprod.Span(n - k),
			rangeprod.Span(N - k),
			rangeprod.Span(M),
			rangeprod.Span(M - N - n + k),
			rangeprod.Span(k),
		},
	)
	f.Simplify()
	out, err := f.Eval(e.comp)
	if err != nil {
		return nil, NewArithmeticError(q, Exact, "range-product evaluation", err)
	}
	return out, nil
}
