package hypergeom

import "fmt"

// Algorithm names one evaluation strategy. The zero value
// Undetermined is the "let the engine choose" marker: Choose never
// returns it and Compute refuses to dispatch it.
type Algorithm int

const (
	// Undetermined defers strategy selection to the engine.
	Undetermined Algorithm = iota
	// Exact evaluates factorial-range products in full decimal
	// precision. No approximation error, cost grows with the tail
	// length and the simplified fraction size.
	Exact
	// Lanczos approximates log-factorials with a fixed 13-term
	// Lanczos series, trading a bounded relative error for a flat
	// evaluation cost.
	Lanczos
	// Spouge approximates log-factorials with the Spouge series,
	// slower than Lanczos but with tunable error.
	Spouge
	// NormalTaylor integrates the normal density as a Taylor series
	// after a continuity-corrected standardization of the query.
	NormalTaylor
	// LibraryReference delegates to the float64 implementation.
	LibraryReference
)

var algorithmNames = map[Algorithm]string{
	Undetermined:     "undetermined",
	Exact:            "exact",
	Lanczos:          "lanczos",
	Spouge:           "spouge",
	NormalTaylor:     "normal",
	LibraryReference: "library",
}

func (a Algorithm) String() string {
	if s, ok := algorithmNames[a]; ok {
		return s
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// ParseAlgorithm maps a strategy name to its Algorithm. The empty
// string and "auto" parse to Undetermined.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "", "auto", "undetermined":
		return Undetermined, nil
	case "exact":
		return Exact, nil
	case "lanczos":
		return Lanczos, nil
	case "spouge":
		return Spouge, nil
	case "normal":
		return NormalTaylor, nil
	case "library":
		return LibraryReference, nil
	}
	return Undetermined, fmt.Errorf("unknown algorithm %q", s)
}

// Op names one of the four probability operations.
type Op int

const (
	// OpPMF is the point mass P(X = k).
	OpPMF Op = iota
	// OpCDF is the lower tail P(X ≤ k).
	OpCDF
	// OpSF is the upper tail P(X > k).
	OpSF
	// OpScore is the two-sided outlier score min(CDF, SF) with the
	// boundary mass split between the tails.
	OpScore
)

var opNames = map[Op]string{
	OpPMF:   "pmf",
	OpCDF:   "cdf",
	OpSF:    "sf",
	OpScore: "score",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(o))
}
