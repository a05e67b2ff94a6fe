package hypergeom

import "fmt"

// Defaults for Config. The precision pair matches the reference
// deployment: 1024 digits of working room, 16 reported.
const (
	DefaultComputationalPrecision uint32 = 1024
	DefaultReportingPrecision     uint32 = 16

	DefaultExactIterations   int64 = 1_000_000
	DefaultLanczosIterations int64 = 500_000
	DefaultSpougeIterations  int64 = 500_000

	DefaultMinSample      int64   = 1_000
	DefaultMaxSampleShare float64 = 0.1
	DefaultMaxImbalance   float64 = 0.1
	DefaultMinTailSigmas  float64 = 0
)

// Precision holds the two significant-digit settings every evaluation
// runs under. Intermediate arithmetic rounds at Computational; results
// round once more at Reporting on the way out.
type Precision struct {
	Computational uint32 `json:"computational"`
	Reporting     uint32 `json:"reporting"`
}

func (p Precision) validate() error {
	if p.Reporting < 1 {
		return fmt.Errorf("reporting precision %d: must be at least 1", p.Reporting)
	}
	if p.Computational < p.Reporting {
		return fmt.Errorf("computational precision %d below reporting precision %d",
			p.Computational, p.Reporting)
	}
	return nil
}

// Budgets caps the per-strategy iteration counts. A tail walk longer
// than its strategy's budget fails with ErrCodeIterationLimit rather
// than run unbounded; the selector uses the same numbers to rule
// strategies out up front.
type Budgets struct {
	ExactIterations   int64 `json:"exact"`
	LanczosIterations int64 `json:"lanczos"`
	SpougeIterations  int64 `json:"spouge"`
}

func (b Budgets) validate() error {
	if b.ExactIterations <= 0 {
		return fmt.Errorf("exact iteration budget %d: must be positive", b.ExactIterations)
	}
	if b.LanczosIterations <= 0 {
		return fmt.Errorf("lanczos iteration budget %d: must be positive", b.LanczosIterations)
	}
	if b.SpougeIterations <= 0 {
		return fmt.Errorf("spouge iteration budget %d: must be positive", b.SpougeIterations)
	}
	return nil
}

// NormalGate restricts the normal approximation to queries where it
// is defensible: samples large enough, small against the population,
// a category split near even, and k far enough out in a tail.
type NormalGate struct {
	// MinSample is the smallest sample size the approximation
	// accepts.
	MinSample int64 `json:"min_sample"`
	// MaxSampleShare caps Sample/M, keeping the finite-population
	// correction negligible. In [0, 1].
	MaxSampleShare float64 `json:"max_sample_share"`
	// MaxImbalance caps |N/M − ½|. In [0, 0.5].
	MaxImbalance float64 `json:"max_imbalance"`
	// MinTailSigmas requires |k − μ| ≥ MinTailSigmas·σ. Zero admits
	// every k.
	MinTailSigmas float64 `json:"min_tail_sigmas"`
}

func (g NormalGate) validate() error {
	if g.MinSample < 0 {
		return fmt.Errorf("normal gate min sample %d: must not be negative", g.MinSample)
	}
	if g.MaxSampleShare < 0 || g.MaxSampleShare > 1 {
		return fmt.Errorf("normal gate max sample share %v: must be in [0, 1]", g.MaxSampleShare)
	}
	if g.MaxImbalance < 0 || g.MaxImbalance > 0.5 {
		return fmt.Errorf("normal gate max imbalance %v: must be in [0, 0.5]", g.MaxImbalance)
	}
	if g.MinTailSigmas < 0 {
		return fmt.Errorf("normal gate min tail sigmas %v: must not be negative", g.MinTailSigmas)
	}
	return nil
}

// Config carries every tunable of an Engine. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	Precision  Precision  `json:"precision"`
	Budgets    Budgets    `json:"budgets"`
	NormalGate NormalGate `json:"normal_gate"`
}

// DefaultConfig returns the reference settings.
func DefaultConfig() Config {
	return Config{
		Precision: Precision{
			Computational: DefaultComputationalPrecision,
			Reporting:     DefaultReportingPrecision,
		},
		Budgets: Budgets{
			ExactIterations:   DefaultExactIterations,
			LanczosIterations: DefaultLanczosIterations,
			SpougeIterations:  DefaultSpougeIterations,
		},
		NormalGate: NormalGate{
			MinSample:      DefaultMinSample,
			MaxSampleShare: DefaultMaxSampleShare,
			MaxImbalance:   DefaultMaxImbalance,
			MinTailSigmas:  DefaultMinTailSigmas,
		},
	}
}

// Validate rejects configurations the engine cannot honor. Nothing is
// defaulted silently.
func (c Config) Validate() error {
	if err := c.Precision.validate(); err != nil {
		return err
	}
	if err := c.Budgets.validate(); err != nil {
		return err
	}
	return c.NormalGate.validate()
}
