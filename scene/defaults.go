package scene

import (
	"fmt"

	"github.com/christian34/caribu/types"
	"github.com/christian34/caribu/units"
)

// Defaults holds the values used when a scene description omits optical
// properties, lights or band names. A Defaults value is immutable; accessors
// return copies.
type Defaults struct {
	material        types.Material
	soilReflectance float64
	light           types.Light
	band            string
	units           *units.System
}

var standardDefaults = &Defaults{
	material:        types.TranslucentMaterial(0.06, 0.07),
	soilReflectance: 0.15,
	light:           types.Light{Energy: 1, Direction: types.Vec3{0, 0, -1}},
	band:            "default_band",
	units:           units.Default(),
}

// Get the standard defaults: material (0.06, 0.07), soil reflectance 0.15, a
// unit energy vertical light, band "default_band" and the metric unit system.
func StandardDefaults() *Defaults {
	return standardDefaults
}

// Create a custom defaults registry.
func NewDefaults(material types.Material, soilReflectance float64, light types.Light, band string, sys *units.System) (*Defaults, error) {
	if err := material.Validate(); err != nil {
		return nil, fmt.Errorf("%w: default material: %s", ErrInvalidFormat, err.Error())
	}
	if !(soilReflectance >= 0 && soilReflectance <= 1) {
		return nil, fmt.Errorf("%w: default soil reflectance %v not in [0, 1]", ErrInvalidFormat, soilReflectance)
	}
	if err := light.Validate(); err != nil {
		return nil, fmt.Errorf("%w: default light: %s", ErrInvalidFormat, err.Error())
	}
	if band == "" {
		return nil, fmt.Errorf("%w: empty default band name", ErrInvalidFormat)
	}
	if sys == nil {
		sys = units.Default()
	}

	return &Defaults{
		material:        append(types.Material(nil), material...),
		soilReflectance: soilReflectance,
		light:           light,
		band:            band,
		units:           sys,
	}, nil
}

func (d *Defaults) Material() types.Material {
	return append(types.Material(nil), d.material...)
}

func (d *Defaults) SoilReflectance() float64 {
	return d.soilReflectance
}

func (d *Defaults) Light() types.Light {
	return d.light
}

func (d *Defaults) Band() string {
	return d.band
}

func (d *Defaults) Units() *units.System {
	return d.units
}
