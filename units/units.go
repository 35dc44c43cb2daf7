// Package units converts between named length units and meters and applies
// the unit rescaling rules at the kernel I/O boundary.
package units

import (
	"errors"
	"fmt"
	"sort"

	"github.com/christian34/caribu/kernel"
)

var (
	ErrUnknownUnit   = errors.New("units: unrecognised scene unit")
	ErrInvalidFactor = errors.New("units: conversion factor must be strictly positive")
)

// Meter is the reference unit.
const Meter = "m"

// A System maps unit names to their length in meters. Systems are immutable
// once created.
type System struct {
	factors map[string]float64
}

var defaultSystem = &System{
	factors: map[string]float64{
		"mm":  0.001,
		"cm":  0.01,
		"dm":  0.1,
		"m":   1,
		"dam": 10,
		"hm":  100,
		"km":  1000,
	},
}

// Get the default metric unit system.
func Default() *System {
	return defaultSystem
}

// Create a custom unit system. All factors must be strictly positive.
func NewSystem(factors map[string]float64) (*System, error) {
	sys := &System{factors: make(map[string]float64, len(factors))}
	for name, f := range factors {
		if !(f > 0) {
			return nil, fmt.Errorf("%w: %q -> %v", ErrInvalidFactor, name, f)
		}
		sys.factors[name] = f
	}
	return sys, nil
}

// Get the length of a unit in meters.
func (s *System) Factor(name string) (float64, error) {
	f, exists := s.factors[name]
	if !exists {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
	return f, nil
}

// List the recognised unit names in sorted order.
func (s *System) Names() []string {
	names := make([]string, 0, len(s.factors))
	for name := range s.factors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create a converter for the given scene unit.
func (s *System) Converter(name string) (Converter, error) {
	f, err := s.Factor(name)
	if err != nil {
		return Converter{}, err
	}
	return Converter{unit: name, factor: f}, nil
}

// A Converter applies the rescaling rules between a scene unit and meters.
// Scene coordinates are never rescaled; conversion only happens for values
// crossing the kernel boundary.
type Converter struct {
	unit   string
	factor float64
}

// Get the scene unit name.
func (c Converter) Unit() string {
	return c.unit
}

// Get the length of one scene unit in meters.
func (c Converter) Factor() float64 {
	return c.factor
}

// Returns true if the scene unit is the meter.
func (c Converter) IsIdentity() bool {
	return c.factor == 1
}

// Rescale a per m² light energy to a per squared scene unit energy.
func (c Converter) LightEnergy(e float64) float64 {
	if c.IsIdentity() {
		return e
	}
	return e * c.factor * c.factor
}

// Convert an area in squared scene units to m².
func (c Converter) Area(a float64) float64 {
	return a * c.factor * c.factor
}

// Convert an energy density per squared scene unit to a density per m².
func (c Converter) Density(d float64) float64 {
	return d / (c.factor * c.factor)
}

// Convert a length given in meters into scene units.
func (c Converter) Length(l float64) float64 {
	return l / c.factor
}

// Convert a domain area in squared scene units to m².
func (c Converter) DomainArea(a float64) float64 {
	return c.Area(a)
}

// Convert kernel results to physical units. Areas are converted to m² and
// irradiance densities to per m² values. The input output is not modified.
func (c Converter) Convert(out *kernel.Output) *kernel.Output {
	conv := out.Clone()
	for idx := range conv.Area {
		conv.Area[idx] = c.Area(conv.Area[idx])
	}
	for _, values := range [][]float64{conv.Eabs, conv.Ei, conv.EiSup, conv.EiInf} {
		for idx := range values {
			values[idx] = c.Density(values[idx])
		}
	}
	return conv
}
