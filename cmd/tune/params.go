// Command tune searches solver coefficients with CMA-ES against a headless
// dam-break run.
package main

import (
	"github.com/pthm-cable/drops/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the solver coefficient table.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "k", Path: "solver.k", Min: 0.0005, Max: 0.04, Default: 0.004},
			{Name: "k2", Path: "solver.k2", Min: 0, Max: 0.1, Default: 0.01},
			{Name: "gamma", Path: "solver.gamma", Min: 0, Max: 0.04, Default: 0.004},
			{Name: "c", Path: "solver.c", Min: 0, Max: 0.3, Default: 0.1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// FromConfig reads the current parameter values out of a config.
func (pv *ParamVector) FromConfig(cfg *config.Config) []float64 {
	return []float64{cfg.Solver.K, cfg.Solver.K2, cfg.Solver.Gamma, cfg.Solver.C}
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes clamped values into cfg and refreshes its derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	cfg.Solver.K = clamped[0]
	cfg.Solver.K2 = clamped[1]
	cfg.Solver.Gamma = clamped[2]
	cfg.Solver.C = clamped[3]

	return cfg.ComputeDerived()
}
