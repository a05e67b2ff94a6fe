package hypergeom

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/ecanvass/hypergeom/internal/refimpl"
)

// libraryTier delegates to the float64 reference implementation and
// lifts the result into decimal form. Accuracy is whatever float64
// log-gamma arithmetic gives, which is why this tier sits last in the
// selector's preference order.
func (e *Engine) libraryTier(q Query, op Op, half bool) (*apd.Decimal, error) {
	var v float64
	switch op {
	case OpPMF:
		v = refimpl.PMF(q.K, q.M, q.N, q.Sample)
	case OpCDF:
		v = refimpl.CDF(q.K, q.M, q.N, q.Sample, half)
	case OpSF:
		v = refimpl.SF(q.K, q.M, q.N, q.Sample, half)
	default:
		v = refimpl.Score(q.K, q.M, q.N, q.Sample)
	}
	out := new(apd.Decimal)
	if _, err := out.SetFloat64(v); err != nil {
		return nil, NewArithmeticError(q, LibraryReference, "lifting float64 result", err)
	}
	return out, nil
}
