package hypergeom

import (
	"math"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecanvass/hypergeom/internal/decmath"
	"github.com/ecanvass/hypergeom/internal/refimpl"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(DefaultConfig())
	require.NoError(t, err)
	return eng
}

// assertDecimal compares by value, not by string form, so trailing
// zeros in either representation cannot fail the test.
func assertDecimal(t *testing.T, want string, got *apd.Decimal) {
	t.Helper()
	assert.Zero(t, decmath.MustParse(want).Cmp(got),
		"want %s, got %s", want, got.Text('f'))
}

// TestNew_RejectsInvalidConfig verifies that construction fails for
// configurations the engine cannot honor.
func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Precision.Reporting = 0
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Precision.Computational = 8
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Budgets.ExactIterations = 0
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.NormalGate.MaxImbalance = 0.7
	_, err = New(cfg)
	assert.Error(t, err)
}

// TestEngine_PMF pins the point mass of the reference drawing: 50
// ballots, 20 in category, 10 sampled, 3 observed.
func TestEngine_PMF(t *testing.T) {
	eng := newTestEngine(t)

	got, err := eng.PMF(Query{K: 3, M: 50, N: 20, Sample: 10})
	require.NoError(t, err)
	assertDecimal(t, "0.2259296293959298", got)
}

// TestEngine_CDF covers the direct walk, the complement path (the
// upper tail is cheaper for k = 8 of 10), and half mode.
func TestEngine_CDF(t *testing.T) {
	eng := newTestEngine(t)

	tests := []struct {
		name string
		q    Query
		half bool
		want string
	}{
		{"lower tail direct", Query{K: 3, M: 50, N: 20, Sample: 10}, false, "0.3649682867768368"},
		{"upper complement", Query{K: 8, M: 50, N: 20, Sample: 10}, false, "0.9994914900167662"},
		{"half boundary", Query{K: 3, M: 50, N: 20, Sample: 10}, true, "0.2520034720788719"},
		{"support top", Query{K: 10, M: 50, N: 20, Sample: 10}, false, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eng.CDF(tt.q, tt.half)
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

// TestEngine_SF mirrors the CDF cases on the upper tail.
func TestEngine_SF(t *testing.T) {
	eng := newTestEngine(t)

	tests := []struct {
		name string
		q    Query
		half bool
		want string
	}{
		{"upper tail direct", Query{K: 8, M: 50, N: 20, Sample: 10}, false, "0.0005085099832338360"},
		{"lower complement", Query{K: 3, M: 50, N: 20, Sample: 10}, false, "0.6350317132231632"},
		{"half boundary", Query{K: 8, M: 50, N: 20, Sample: 10}, true, "0.003175734774713563"},
		{"support top excludes mass", Query{K: 10, M: 50, N: 20, Sample: 10}, false, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eng.SF(tt.q, tt.half)
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

// TestEngine_Score pins the two-sided outlier score: the smaller half
// tail, ½ at a perfectly central count.
func TestEngine_Score(t *testing.T) {
	eng := newTestEngine(t)

	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"low side", Query{K: 3, M: 50, N: 20, Sample: 10}, "0.2520034720788719"},
		{"high side", Query{K: 8, M: 50, N: 20, Sample: 10}, "0.003175734774713563"},
		{"central count", Query{K: 25, M: 100, N: 50, Sample: 50}, "0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eng.Score(tt.q)
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

// TestEngine_CollapsedSupport exercises the degenerate gates: a
// census (sample = population) pins k, and a one-sided category pins
// the support to a single point. Full tails collapse to certainty;
// half tails split the whole mass evenly.
func TestEngine_CollapsedSupport(t *testing.T) {
	eng := newTestEngine(t)
	census := Query{K: 10, M: 10, N: 10, Sample: 10}

	cdf, err := eng.CDF(census, false)
	require.NoError(t, err)
	assertDecimal(t, "1", cdf)

	sf, err := eng.SF(census, false)
	require.NoError(t, err)
	assertDecimal(t, "0", sf)

	cdfh, err := eng.CDF(census, true)
	require.NoError(t, err)
	assertDecimal(t, "0.5", cdfh)

	sfh, err := eng.SF(census, true)
	require.NoError(t, err)
	assertDecimal(t, "0.5", sfh)

	score, err := eng.Score(census)
	require.NoError(t, err)
	assertDecimal(t, "0.5", score)

	// An empty category or an empty sample pins k to zero: the whole
	// mass sits on the single support point.
	for _, q := range []Query{
		{K: 0, M: 10, N: 0, Sample: 5},
		{K: 0, M: 10, N: 5, Sample: 0},
	} {
		cdf, err := eng.CDF(q, false)
		require.NoError(t, err)
		assertDecimal(t, "1", cdf)

		sf, err := eng.SF(q, false)
		require.NoError(t, err)
		assertDecimal(t, "0", sf)

		score, err := eng.Score(q)
		require.NoError(t, err)
		assertDecimal(t, "0.5", score)
	}
}

// TestEngine_BottomPinnedSupport covers the gate where k sits at the
// bottom of a shifted support (M−N = Sample−K): the half CDF is
// exactly half the boundary mass.
func TestEngine_BottomPinnedSupport(t *testing.T) {
	eng := newTestEngine(t)
	q := Query{K: 15, M: 30, N: 25, Sample: 20}

	pmf, err := eng.PMF(q)
	require.NoError(t, err)
	assertDecimal(t, "0.1087954191402467", pmf)

	cdfh, err := eng.CDF(q, true)
	require.NoError(t, err)
	assertDecimal(t, "0.05439770957012335", cdfh)

	sfh, err := eng.SF(q, true)
	require.NoError(t, err)
	assertDecimal(t, "0.9456022904298766", sfh)

	score, err := eng.Score(q)
	require.NoError(t, err)
	assertDecimal(t, "0.05439770957012335", score)
}

// TestEngine_InvalidQueries verifies the closed-form answers for
// malformed and out-of-support queries: no error, certainty on the
// tails, zero mass.
func TestEngine_InvalidQueries(t *testing.T) {
	eng := newTestEngine(t)

	tests := []struct {
		name                string
		q                   Query
		pmf, cdf, sf, score string
	}{
		{"zero population", Query{K: 0, M: 0, N: 0, Sample: 0}, "0", "1", "1", "1"},
		{"category exceeds population", Query{K: 1, M: 10, N: 11, Sample: 5}, "0", "1", "1", "1"},
		{"negative category", Query{K: 1, M: 10, N: -1, Sample: 5}, "0", "1", "1", "1"},
		{"sample exceeds population", Query{K: 1, M: 10, N: 5, Sample: 11}, "0", "1", "1", "1"},
		{"k below support", Query{K: 14, M: 30, N: 25, Sample: 20}, "0", "0", "1", "0"},
		{"k above support", Query{K: 11, M: 50, N: 20, Sample: 10}, "0", "1", "0", "0"},
		{"negative k", Query{K: -1, M: 50, N: 20, Sample: 10}, "0", "0", "1", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pmf, err := eng.PMF(tt.q)
			require.NoError(t, err)
			assertDecimal(t, tt.pmf, pmf)

			cdf, err := eng.CDF(tt.q, false)
			require.NoError(t, err)
			assertDecimal(t, tt.cdf, cdf)

			sf, err := eng.SF(tt.q, false)
			require.NoError(t, err)
			assertDecimal(t, tt.sf, sf)

			score, err := eng.Score(tt.q)
			require.NoError(t, err)
			assertDecimal(t, tt.score, score)
		})
	}
}

// TestEngine_PopulationCap verifies that populations beyond
// MaxPopulation fail loudly instead of degrading.
func TestEngine_PopulationCap(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Score(Query{K: 1, M: MaxPopulation + 1, N: 2, Sample: 3})
	require.Error(t, err)
	assert.True(t, IsArithmeticError(err))
}

// TestEngine_ComputeRejectsUndetermined verifies that the forcing
// entry point refuses to guess a strategy.
func TestEngine_ComputeRejectsUndetermined(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Compute(Query{K: 3, M: 50, N: 20, Sample: 10}, OpCDF, false, Undetermined)
	require.Error(t, err)
	assert.True(t, IsSelectorError(err))
}

// TestEngine_IterationBudget verifies that a forced strategy whose
// walk exceeds its budget fails with an iteration-limit error rather
// than run unbounded.
func TestEngine_IterationBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Budgets.ExactIterations = 10
	eng, err := New(cfg)
	require.NoError(t, err)

	_, err = eng.Compute(Query{K: 30, M: 100, N: 50, Sample: 50}, OpCDF, false, Exact)
	require.Error(t, err)
	assert.True(t, IsIterationLimitError(err))

	var ce *ComputeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, Exact, ce.Algorithm)
	assert.Equal(t, "10", ce.Limit)
}

// TestEngine_CrossStrategyAgreement forces the three walking
// strategies over the same query and checks they agree to well past
// the reporting precision their boundary errors allow.
func TestEngine_CrossStrategyAgreement(t *testing.T) {
	eng := newTestEngine(t)
	q := Query{K: 15, M: 500, N: 200, Sample: 50}

	for _, op := range []Op{OpPMF, OpCDF, OpSF, OpScore} {
		exact, err := eng.Compute(q, op, false, Exact)
		require.NoError(t, err)
		exactF, err := exact.Float64()
		require.NoError(t, err)

		for _, alg := range []Algorithm{Lanczos, Spouge} {
			got, err := eng.Compute(q, op, false, alg)
			require.NoError(t, err)
			gotF, err := got.Float64()
			require.NoError(t, err)
			assert.InEpsilon(t, exactF, gotF, 1e-10,
				"%s with %s: exact %s, got %s", op, alg, exact.Text('f'), got.Text('f'))
		}
	}
}

// TestEngine_ExactMatchesReference spot-checks the decimal engine
// against the float64 reference on a mid-size query.
func TestEngine_ExactMatchesReference(t *testing.T) {
	eng := newTestEngine(t)
	q := Query{K: 15, M: 500, N: 200, Sample: 50}

	pmf, err := eng.PMF(q)
	require.NoError(t, err)
	assertDecimal(t, "0.03884958292359749", pmf)
	pmfF, err := pmf.Float64()
	require.NoError(t, err)
	assert.InEpsilon(t, refimpl.PMF(q.K, q.M, q.N, q.Sample), pmfF, 1e-12)

	cdf, err := eng.CDF(q, false)
	require.NoError(t, err)
	assertDecimal(t, "0.08402760246458540", cdf)
	cdfF, err := cdf.Float64()
	require.NoError(t, err)
	assert.InEpsilon(t, refimpl.CDF(q.K, q.M, q.N, q.Sample, false), cdfF, 1e-12)
}

// TestEngine_HalfTailSymmetry checks the defining property of half
// mode on a symmetric drawing: for every k the two half tails sum to
// 1 after one more rounding at reporting precision.
func TestEngine_HalfTailSymmetry(t *testing.T) {
	eng := newTestEngine(t)

	for k := int64(0); k <= 50; k++ {
		q := Query{K: k, M: 100, N: 50, Sample: 50}

		cdf, err := eng.CDF(q, true)
		require.NoError(t, err)
		sf, err := eng.SF(q, true)
		require.NoError(t, err)

		sum := new(apd.Decimal)
		_, err = eng.comp.Add(sum, cdf, sf)
		require.NoError(t, err)
		_, err = eng.report.Round(sum, sum)
		require.NoError(t, err)
		assert.Zero(t, sum.Cmp(decOne), "k=%d: cdf %s + sf %s", k, cdf.Text('f'), sf.Text('f'))
	}
}

// TestEngine_MirrorSymmetry checks P(X ≤ k) = P(X' > n−k−1) under the
// category swap N ↔ M−N, which the exact walk must satisfy to the
// last reported digit.
func TestEngine_MirrorSymmetry(t *testing.T) {
	eng := newTestEngine(t)

	for _, k := range []int64{0, 2, 5, 9} {
		q := Query{K: k, M: 60, N: 24, Sample: 12}
		mirror := Query{K: q.Sample - k - 1, M: 60, N: 36, Sample: 12}

		cdf, err := eng.CDF(q, false)
		require.NoError(t, err)
		sf, err := eng.SF(mirror, false)
		require.NoError(t, err)
		assert.Zero(t, cdf.Cmp(sf), "k=%d: cdf %s, mirror sf %s", k, cdf.Text('f'), sf.Text('f'))
	}
}

// TestEngine_NormalTaylor starves the walking budgets so the selector
// lands on the normal approximation, and compares the Taylor tail
// against the float64 normal CDF at the same standardized argument.
func TestEngine_NormalTaylor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Budgets = Budgets{ExactIterations: 10, LanczosIterations: 10, SpougeIterations: 10}
	eng, err := New(cfg)
	require.NoError(t, err)

	q := Query{K: 900, M: 100_000, N: 50_000, Sample: 2_000}
	require.Equal(t, NormalTaylor, eng.Choose(q, OpCDF))

	got, err := eng.CDF(q, false)
	require.NoError(t, err)
	gotF, err := got.Float64()
	require.NoError(t, err)

	z := (899.5 - 1000) / math.Sqrt(500)
	assert.InEpsilon(t, refimpl.NormalCDF(z), gotF, 1e-9)

	sf, err := eng.SF(q, false)
	require.NoError(t, err)
	sfF, err := sf.Float64()
	require.NoError(t, err)
	assert.InEpsilon(t, refimpl.NormalSF(z), sfF, 1e-9)
}

// TestEngine_NormalTaylorScore checks the two-sided score on the
// Taylor path: twice the one-sided tail of the symmetric drawing.
func TestEngine_NormalTaylorScore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Budgets = Budgets{ExactIterations: 10, LanczosIterations: 10, SpougeIterations: 10}
	eng, err := New(cfg)
	require.NoError(t, err)

	q := Query{K: 900, M: 100_000, N: 50_000, Sample: 2_000}
	require.Equal(t, NormalTaylor, eng.Choose(q, OpScore))

	score, err := eng.Score(q)
	require.NoError(t, err)
	scoreF, err := score.Float64()
	require.NoError(t, err)

	z := (900.0 - 1000) / math.Sqrt(500)
	assert.InEpsilon(t, refimpl.NormalCDF(z), scoreF, 1e-9)
}

// TestEngine_ForcedNormalPMF verifies the density fallback when the
// normal strategy is forced onto a point-mass request.
func TestEngine_ForcedNormalPMF(t *testing.T) {
	eng := newTestEngine(t)

	q := Query{K: 900, M: 100_000, N: 50_000, Sample: 2_000}
	got, err := eng.Compute(q, OpPMF, false, NormalTaylor)
	require.NoError(t, err)
	gotF, err := got.Float64()
	require.NoError(t, err)

	z := (900.0 - 1000) / math.Sqrt(500)
	want := math.Exp(-z*z/2) / math.Sqrt(2*math.Pi)
	assert.InEpsilon(t, want, gotF, 1e-9)
}

// TestEngine_LibraryTier forces the float64 tier and checks it
// matches the reference implementation bit for bit after the decimal
// round trip.
func TestEngine_LibraryTier(t *testing.T) {
	eng := newTestEngine(t)
	q := Query{K: 3, M: 50, N: 20, Sample: 10}

	got, err := eng.Compute(q, OpCDF, false, LibraryReference)
	require.NoError(t, err)
	gotF, err := got.Float64()
	require.NoError(t, err)
	assert.InDelta(t, refimpl.CDF(3, 50, 20, 10, false), gotF, 1e-15)

	score, err := eng.Compute(q, OpScore, true, LibraryReference)
	require.NoError(t, err)
	scoreF, err := score.Float64()
	require.NoError(t, err)
	assert.InDelta(t, refimpl.Score(3, 50, 20, 10), scoreF, 1e-15)
}

// TestEngine_ScoreNeverExceedsHalf sweeps a small support end to end:
// the two-sided score peaks at ½ and every value stays in (0, ½].
func TestEngine_ScoreNeverExceedsHalf(t *testing.T) {
	eng := newTestEngine(t)

	for k := int64(0); k <= 10; k++ {
		score, err := eng.Score(Query{K: k, M: 50, N: 20, Sample: 10})
		require.NoError(t, err)
		assert.True(t, score.Cmp(decHalf) <= 0, "k=%d: score %s", k, score.Text('f'))
		assert.Positive(t, score.Sign(), "k=%d: score %s", k, score.Text('f'))
	}
}

// TestEngine_TailIdentities sweeps the reference drawing end to end
// and checks the relations between the four operations: every value
// stays in [0, 1], the full tails are complements after one more
// rounding, P(X ≤ k) and P(X > k−1) overlap in exactly the boundary
// mass, and the score is the smaller half tail.
func TestEngine_TailIdentities(t *testing.T) {
	eng := newTestEngine(t)

	for k := int64(0); k <= 10; k++ {
		q := Query{K: k, M: 50, N: 20, Sample: 10}

		pmf, err := eng.PMF(q)
		require.NoError(t, err)
		cdf, err := eng.CDF(q, false)
		require.NoError(t, err)
		sf, err := eng.SF(q, false)
		require.NoError(t, err)
		score, err := eng.Score(q)
		require.NoError(t, err)

		for _, v := range []*apd.Decimal{pmf, cdf, sf, score} {
			assert.True(t, v.Sign() >= 0 && v.Cmp(decOne) <= 0,
				"k=%d: %s out of range", k, v.Text('f'))
		}

		sum := new(apd.Decimal)
		_, err = eng.comp.Add(sum, cdf, sf)
		require.NoError(t, err)
		_, err = eng.report.Round(sum, sum)
		require.NoError(t, err)
		assert.Zero(t, sum.Cmp(decOne), "k=%d: cdf %s + sf %s", k, cdf.Text('f'), sf.Text('f'))

		sfPrev, err := eng.SF(Query{K: k - 1, M: 50, N: 20, Sample: 10}, false)
		require.NoError(t, err)
		ident := new(apd.Decimal)
		ed := apd.MakeErrDecimal(eng.comp)
		ed.Add(ident, cdf, sfPrev)
		ed.Sub(ident, ident, pmf)
		require.NoError(t, ed.Err())
		identF, err := ident.Float64()
		require.NoError(t, err)
		assert.InDelta(t, 1, identF, 1e-15, "k=%d: cdf + sf(k−1) − pmf", k)

		cdfh, err := eng.CDF(q, true)
		require.NoError(t, err)
		sfh, err := eng.SF(q, true)
		require.NoError(t, err)
		want := cdfh
		if sfh.Cmp(cdfh) < 0 {
			want = sfh
		}
		assert.Zero(t, score.Cmp(want),
			"k=%d: score %s, smaller half tail %s", k, score.Text('f'), want.Text('f'))
	}
}

// TestEngine_TailMonotonicity walks k across and past the support: the
// lower tail never shrinks as k grows and the upper tail never grows,
// with the out-of-support closed forms continuing both ends.
func TestEngine_TailMonotonicity(t *testing.T) {
	eng := newTestEngine(t)

	var prevCDF, prevSF *apd.Decimal
	for k := int64(-1); k <= 11; k++ {
		q := Query{K: k, M: 50, N: 20, Sample: 10}

		cdf, err := eng.CDF(q, false)
		require.NoError(t, err)
		sf, err := eng.SF(q, false)
		require.NoError(t, err)

		if prevCDF != nil {
			assert.True(t, cdf.Cmp(prevCDF) >= 0,
				"k=%d: cdf fell from %s to %s", k, prevCDF.Text('f'), cdf.Text('f'))
			assert.True(t, sf.Cmp(prevSF) <= 0,
				"k=%d: sf rose from %s to %s", k, prevSF.Text('f'), sf.Text('f'))
		}
		prevCDF, prevSF = cdf, sf
	}
}
