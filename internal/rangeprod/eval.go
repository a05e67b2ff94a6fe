package rangeprod

import "github.com/cockroachdb/apd/v3"

// cursor walks the integer elements of a range list in order, skipping
// empty ranges.
type cursor struct {
	ranges []Range
	idx    int
	val    int64
}

func newCursor(rs []Range) *cursor {
	c := &cursor{ranges: rs}
	c.settle()
	return c
}

// settle positions val at the start of the next non-empty range.
func (c *cursor) settle() {
	for c.idx < len(c.ranges) && c.ranges[c.idx].empty() {
		c.idx++
	}
	if c.idx < len(c.ranges) {
		c.val = c.ranges[c.idx].Lo
	}
}

func (c *cursor) done() bool { return c.idx >= len(c.ranges) }

func (c *cursor) take() int64 {
	v := c.val
	if c.val < c.ranges[c.idx].Hi {
		c.val++
	} else {
		c.idx++
		c.settle()
	}
	return v
}

// Eval computes the fraction under ctx. The accumulator starts as the
// ratio of the two leading elements; every later step divides by the
// next denominator element while the running value exceeds one and
// multiplies by the next numerator element otherwise, then drains
// whichever side survives. Keeping the magnitude pinned near one is
// the property that makes extreme precisions affordable, and it holds
// regardless of how lopsided the two sides are.
func (f *Fraction) Eval(ctx *apd.Context) (*apd.Decimal, error) {
	num := newCursor(f.Num)
	den := newCursor(f.Den)
	ed := apd.MakeErrDecimal(ctx)

	acc := apd.New(1, 0)
	one := apd.New(1, 0)
	el := new(apd.Decimal)

	if !num.done() && !den.done() {
		acc.SetInt64(num.take())
		el.SetInt64(den.take())
		ed.Quo(acc, acc, el)
	}
	for !num.done() && !den.done() {
		if acc.Cmp(one) > 0 {
			el.SetInt64(den.take())
			ed.Quo(acc, acc, el)
		} else {
			el.SetInt64(num.take())
			ed.Mul(acc, acc, el)
		}
	}
	for !num.done() {
		el.SetInt64(num.take())
		ed.Mul(acc, acc, el)
	}
	for !den.done() {
		el.SetInt64(den.take())
		ed.Quo(acc, acc, el)
	}
	return acc, ed.Err()
}
