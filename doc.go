// Package hypergeom computes hypergeometric tail probabilities at
// arbitrary decimal precision, built for election-audit outlier
// scoring where the interesting values live far below float64's
// smallest subnormal.
//
// A population of M ballots holds N of the category under audit; a
// sample of Sample ballots drawn without replacement shows K of them.
// Four operations answer how surprising K is: the point mass PMF, the
// lower tail CDF, the upper tail SF, and the two-sided Score — the
// smaller of the two tails with the boundary mass split evenly
// between them, so a perfectly central K scores exactly ½.
//
// Four strategies serve the operations: exact factorial-range
// products, two log-gamma approximations (Lanczos and Spouge), a
// Taylor-integrated normal approximation, and a float64 library tier.
// Choose prices a query against the configured iteration budgets and
// picks the best strategy the budgets admit; Compute forces one.
// Every result is rounded once to the reporting precision and clamped
// to [0, 1].
//
//	eng, err := hypergeom.New(hypergeom.DefaultConfig())
//	if err != nil {
//		...
//	}
//	score, err := eng.Score(hypergeom.Query{K: 3, M: 50, N: 20, Sample: 10})
//
// Precision, budgets and the normal-approximation gate come from
// Config. The zero Algorithm value Undetermined means "let the engine
// choose": Choose never returns it and Compute refuses it.
package hypergeom
