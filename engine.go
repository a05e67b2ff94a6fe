package hypergeom

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/ecanvass/hypergeom/internal/decmath"
	"github.com/ecanvass/hypergeom/internal/normdist"
)

// Shared operand constants. apd operations never write through their
// operands, only the receiver, so these are safe across goroutines.
var (
	decOne  = apd.New(1, 0)
	decTwo  = apd.New(2, 0)
	decHalf = apd.New(5, -1)
)

// Engine evaluates hypergeometric probabilities under one Config. It
// is safe for concurrent use; every evaluation allocates its own
// working decimals.
type Engine struct {
	cfg    Config
	comp   *apd.Context
	report *apd.Context
	normal *normdist.Normal
}

// New validates cfg and builds an Engine. Construction pays the π
// summation for the normal tier once.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("hypergeom: %w", err)
	}
	comp := decmath.Context(cfg.Precision.Computational)
	nd, err := normdist.New(comp, cfg.Precision.Reporting)
	if err != nil {
		return nil, fmt.Errorf("hypergeom: %w", err)
	}
	return &Engine{
		cfg:    cfg,
		comp:   comp,
		report: decmath.Context(cfg.Precision.Reporting),
		normal: nd,
	}, nil
}

// Config returns the engine's settings.
func (e *Engine) Config() Config {
	return e.cfg
}

// PMF returns P(X = K) with the strategy the selector picks.
func (e *Engine) PMF(q Query) (*apd.Decimal, error) {
	return e.Compute(q, OpPMF, false, e.Choose(q, OpPMF))
}

// CDF returns P(X ≤ K), or P(X < K) + PMF/2 in half mode.
func (e *Engine) CDF(q Query, half bool) (*apd.Decimal, error) {
	return e.Compute(q, OpCDF, half, e.Choose(q, OpCDF))
}

// SF returns P(X > K), or P(X > K) + PMF/2 in half mode.
func (e *Engine) SF(q Query, half bool) (*apd.Decimal, error) {
	return e.Compute(q, OpSF, half, e.Choose(q, OpSF))
}

// Score returns the two-sided outlier score min(CDF, SF) over the
// half tails: low for counts far out in either tail, ½ at the center.
func (e *Engine) Score(q Query) (*apd.Decimal, error) {
	return e.Compute(q, OpScore, true, e.Choose(q, OpScore))
}

// Compute evaluates op on q with a caller-chosen strategy, the
// forcing entry point behind the facade methods. OpScore always
// splits the boundary mass regardless of half. Results are rounded to
// reporting precision and clamped to [0,1]; malformed and
// out-of-support queries resolve to their closed-form answers without
// error.
func (e *Engine) Compute(q Query, op Op, half bool, alg Algorithm) (*apd.Decimal, error) {
	if q.M > MaxPopulation {
		return nil, NewArithmeticError(q, alg,
			fmt.Sprintf("population %d exceeds maximum %d", q.M, MaxPopulation), nil)
	}
	if out, done := degenerateResult(q, op); done {
		return out, nil
	}

	var out *apd.Decimal
	var err error
	switch alg {
	case Exact:
		out, err = e.dispatchWalk(q, op, half, e.exactTier())
	case Lanczos:
		out, err = e.dispatchWalk(q, op, half, e.lanczosTier())
	case Spouge:
		out, err = e.dispatchWalk(q, op, half, e.spougeTier())
	case NormalTaylor:
		out, err = e.normalTier(q, op, half)
	case LibraryReference:
		out, err = e.libraryTier(q, op, half)
	default:
		return nil, NewSelectorError(q, alg, "no algorithm determined for query")
	}
	if err != nil {
		return nil, err
	}
	if _, err := e.report.Round(out, out); err != nil {
		return nil, NewArithmeticError(q, alg, "rounding result", err)
	}
	return decmath.Clamp01(out), nil
}

// dispatchWalk routes a walking-tier request: point masses evaluate
// directly, single tails through the cheap-side pairing, the score
// through the two-sided minimum.
func (e *Engine) dispatchWalk(q Query, op Op, half bool, t tier) (*apd.Decimal, error) {
	switch op {
	case OpPMF:
		if t.approx == nil {
			return e.exactPMFRaw(q)
		}
		return e.approxPMFRaw(q, t.approx, t.alg)
	case OpCDF, OpSF:
		return e.tailPair(q, op, half, t)
	}
	return e.minTail(q, t)
}

// degenerateResult answers queries outside the computable envelope in
// closed form: a malformed population triple reports certainty (PMF
// 0, every tail and the score 1), a k below the support closes the
// lower tail, a k above it closes the upper.
func degenerateResult(q Query, op Op) (*apd.Decimal, bool) {
	switch q.classify() {
	case queryMalformed:
		if op == OpPMF {
			return apd.New(0, 0), true
		}
		return apd.New(1, 0), true
	case queryBelowSupport:
		if op == OpSF {
			return apd.New(1, 0), true
		}
		return apd.New(0, 0), true
	case queryAboveSupport:
		if op == OpCDF {
			return apd.New(1, 0), true
		}
		return apd.New(0, 0), true
	}
	return nil, false
}
