package hypergeom

// MaxPopulation bounds M. The walk recurrences multiply two support
// indices into an int64 before touching decimal arithmetic, and the
// selector's cost model works in int64 too; 2³¹ keeps both exact.
const MaxPopulation int64 = 1 << 31

// Query is one hypergeometric evaluation: a population of M ballots
// containing N of the category under audit, a sample of Sample drawn
// without replacement, and K category members observed in it.
type Query struct {
	// K is the observed count in the sample.
	K int64
	// M is the population size.
	M int64
	// N is the category count in the population.
	N int64
	// Sample is the number of draws.
	Sample int64
}

// SupportBounds returns the inclusive range of observable counts,
// [max(0, Sample+N−M), min(Sample, N)].
func (q Query) SupportBounds() (lo, hi int64) {
	return max(0, q.Sample+q.N-q.M), min(q.Sample, q.N)
}

// wellFormed reports whether the population triple describes a real
// drawing: a positive population containing between zero and M
// category members, sampled between zero and M times.
func (q Query) wellFormed() bool {
	return q.M > 0 && q.N >= 0 && q.N <= q.M && q.Sample >= 0 && q.Sample <= q.M
}

type queryClass int

const (
	queryValid queryClass = iota
	queryMalformed
	queryBelowSupport
	queryAboveSupport
)

func (q Query) classify() queryClass {
	if !q.wellFormed() {
		return queryMalformed
	}
	lo, hi := q.SupportBounds()
	switch {
	case q.K < lo:
		return queryBelowSupport
	case q.K > hi:
		return queryAboveSupport
	}
	return queryValid
}
