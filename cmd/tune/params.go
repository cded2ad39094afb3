package main

import (
	"fmt"

	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/systems"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // particle type
	Path    string  // config path for logging
	Min     float64 // lower bound
	Max     float64 // upper bound
	Default float64 // value in the base config
	index   int     // position in cfg.Particles
}

// ParamVector holds the densities being tuned.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates one density parameter per named solid type.
func NewParamVector(cfg *config.Config, types []string) (*ParamVector, error) {
	pv := &ParamVector{}
	for _, name := range types {
		idx := -1
		for i, p := range cfg.Particles {
			if p.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("type %q: %w", name, systems.ErrNotFound)
		}
		if cfg.Particles[idx].Kind != systems.KindSolid {
			return nil, fmt.Errorf("type %q is %s; only solid densities shape a pile", name, cfg.Particles[idx].Kind)
		}
		pv.Specs = append(pv.Specs, ParamSpec{
			Name:    name,
			Path:    fmt.Sprintf("particles[%d].density", idx),
			Min:     0,
			Max:     1,
			Default: cfg.Particles[idx].Density,
			index:   idx,
		})
	}
	if len(pv.Specs) == 0 {
		return nil, fmt.Errorf("no types to tune")
	}
	return pv, nil
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
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped densities into both the raw and derived
// particle definitions.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		cfg.Particles[spec.index].Density = clamped[i]
		cfg.Derived.TypeDefs[spec.index].Density = float32(clamped[i])
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = cfg.Particles[spec.index].Density
	}
	return v
}
