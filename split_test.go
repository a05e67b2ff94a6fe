package hypergeom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecanvass/hypergeom/internal/decmath"
)

// TestSplitValue covers the scientific-form split: coefficient digits
// at reporting precision, exponent as the base-10 magnitude, and the
// ExponentZero sentinel for values without one.
func TestSplitValue(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		digits    uint32
		wantCoeff float64
		wantExp   int64
	}{
		{"reference score", "0.2259296293959298", 16, 2.259296293959298, -1},
		{"one", "1", 16, 1, 0},
		{"half", "0.5", 16, 5, -1},
		{"deep subnormal territory", "1.234567890123456E-3000", 16, 1.234567890123456, -3000},
		{"rounds to digits", "0.987654321", 3, 9.88, -1},
		{"negative", "-0.25", 16, -2.5, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitValue(decmath.MustParse(tt.in), tt.digits)
			assert.InDelta(t, tt.wantCoeff, got.Coefficient, 1e-12)
			assert.Equal(t, tt.wantExp, got.Exponent)
		})
	}
}

// TestSplitValue_Sentinels verifies the zero and non-finite cases.
func TestSplitValue_Sentinels(t *testing.T) {
	got := SplitValue(decmath.MustParse("0"), 16)
	assert.Zero(t, got.Coefficient)
	assert.Equal(t, ExponentZero, got.Exponent)

	got = SplitValue(nil, 16)
	assert.True(t, math.IsNaN(got.Coefficient))
	assert.Equal(t, ExponentZero, got.Exponent)
}

// TestEngine_Split verifies the engine-level wrapper rounds at the
// configured reporting precision.
func TestEngine_Split(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Precision.Reporting = 4
	eng, err := New(cfg)
	require.NoError(t, err)

	got := eng.Split(decmath.MustParse("0.2259296293959298"))
	assert.InDelta(t, 2.259, got.Coefficient, 1e-12)
	assert.Equal(t, int64(-1), got.Exponent)
}
