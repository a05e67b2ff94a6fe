// Package config loads engine configuration from YAML. Absent fields
// fall back to the engine defaults; present ones are taken verbatim
// and validated, so a typo fails loudly instead of silently running
// at the wrong precision.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ecanvass/hypergeom"
)

// fileSchema mirrors the YAML layout. Pointer fields distinguish
// "absent, use the default" from explicit zeros.
type fileSchema struct {
	Precision  *precisionSchema  `yaml:"precision"`
	Budgets    *budgetsSchema    `yaml:"budgets"`
	NormalGate *normalGateSchema `yaml:"normal_gate"`
}

type precisionSchema struct {
	// Computational is the working precision in significant digits.
	Computational *uint32 `yaml:"computational"`

	// Reporting is the result precision in significant digits.
	Reporting *uint32 `yaml:"reporting"`
}

type budgetsSchema struct {
	// Exact caps the exact strategy's iteration count.
	Exact *int64 `yaml:"exact"`

	// Lanczos caps the Lanczos strategy's iteration count.
	Lanczos *int64 `yaml:"lanczos"`

	// Spouge caps the Spouge strategy's iteration count.
	Spouge *int64 `yaml:"spouge"`
}

type normalGateSchema struct {
	// MinSample is the smallest sample the normal approximation
	// accepts.
	MinSample *int64 `yaml:"min_sample"`

	// MaxSampleShare caps Sample/M.
	MaxSampleShare *float64 `yaml:"max_sample_share"`

	// MaxImbalance caps |N/M − ½|.
	MaxImbalance *float64 `yaml:"max_imbalance"`

	// MinTailSigmas is the minimum |k − μ| in standard deviations.
	MinTailSigmas *float64 `yaml:"min_tail_sigmas"`
}

// Load reads path and returns the engine configuration it describes,
// defaults applied for absent fields. Unknown fields and values the
// engine would reject are errors.
func Load(path string) (hypergeom.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return hypergeom.Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into an engine configuration. An empty
// document is the all-defaults configuration.
func Parse(data []byte) (hypergeom.Config, error) {
	var schema fileSchema
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&schema); err != nil && !errors.Is(err, io.EOF) {
		return hypergeom.Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg := hypergeom.DefaultConfig()
	schema.overlay(&cfg)
	if err := cfg.Validate(); err != nil {
		return hypergeom.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// overlay copies the fields present in the file over the defaults.
func (s *fileSchema) overlay(cfg *hypergeom.Config) {
	if p := s.Precision; p != nil {
		if p.Computational != nil {
			cfg.Precision.Computational = *p.Computational
		}
		if p.Reporting != nil {
			cfg.Precision.Reporting = *p.Reporting
		}
	}
	if b := s.Budgets; b != nil {
		if b.Exact != nil {
			cfg.Budgets.ExactIterations = *b.Exact
		}
		if b.Lanczos != nil {
			cfg.Budgets.LanczosIterations = *b.Lanczos
		}
		if b.Spouge != nil {
			cfg.Budgets.SpougeIterations = *b.Spouge
		}
	}
	if g := s.NormalGate; g != nil {
		if g.MinSample != nil {
			cfg.NormalGate.MinSample = *g.MinSample
		}
		if g.MaxSampleShare != nil {
			cfg.NormalGate.MaxSampleShare = *g.MaxSampleShare
		}
		if g.MaxImbalance != nil {
			cfg.NormalGate.MaxImbalance = *g.MaxImbalance
		}
		if g.MinTailSigmas != nil {
			cfg.NormalGate.MinTailSigmas = *g.MinTailSigmas
		}
	}
}
