package hypergeom

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/ecanvass/hypergeom/internal/decmath"
)

// ExponentZero marks the exponent of a split whose value has no
// base-10 magnitude: exact zero and non-finite input.
const ExponentZero int64 = math.MinInt64

// Split is the (coefficient, exponent) form of a reported
// probability. Coefficient carries the reporting digits in [1, 10) (or
// its negation), Exponent the base-10 magnitude, so the consumer can
// sort scores by magnitude without parsing decimals.
type Split struct {
	Coefficient float64 `json:"coefficient"`
	Exponent    int64   `json:"exponent"`
}

// SplitValue rounds x to digits significant digits and splits its
// scientific form. Zero reports a zero coefficient and non-finite
// input a NaN one, both with ExponentZero.
func SplitValue(x *apd.Decimal, digits uint32) Split {
	if x == nil || x.Form != apd.Finite {
		return Split{Coefficient: math.NaN(), Exponent: ExponentZero}
	}
	if x.IsZero() {
		return Split{Exponent: ExponentZero}
	}
	rounded := new(apd.Decimal)
	if _, err := decmath.Context(max(digits, 1)).Round(rounded, x); err != nil {
		return Split{Coefficient: math.NaN(), Exponent: ExponentZero}
	}

	mant, exp, _ := strings.Cut(rounded.Text('E'), "E")
	coeff, err := strconv.ParseFloat(mant, 64)
	if err != nil {
		return Split{Coefficient: math.NaN(), Exponent: ExponentZero}
	}
	e10, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return Split{Coefficient: math.NaN(), Exponent: ExponentZero}
	}
	return Split{Coefficient: coeff, Exponent: e10}
}

// Split renders x at the engine's reporting precision.
func (e *Engine) Split(x *apd.Decimal) Split {
	return SplitValue(x, e.cfg.Precision.Reporting)
}
