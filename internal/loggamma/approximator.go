// Package loggamma evaluates log-factorials through fixed-coefficient
// approximations so hypergeometric masses over million-scale
// populations can be formed in log space instead of through factorial
// products. Two interchangeable strategies are provided, Lanczos and
// Spouge, each backed by a pinned coefficient table; the tables can be
// regenerated from first principles with the Generate functions.
package loggamma

import "github.com/cockroachdb/apd/v3"

// Approximator computes ln z! from a fixed coefficient table. z is a
// non-negative count; results carry the precision of ctx.
type Approximator interface {
	// Name identifies the strategy in diagnostics and stored results.
	Name() string
	// Terms reports the coefficient count, which drives the per-call
	// cost the selector charges for this strategy.
	Terms() int
	// LogFactorial evaluates ln z! = ln Γ(z+1) under ctx.
	LogFactorial(ctx *apd.Context, z int64) (*apd.Decimal, error)
}
