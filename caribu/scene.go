// Package caribu computes light interception over 3D plant canopies. A Scene
// normalizes geometry, optical properties and light sources, dispatches the
// computation to a light-transport kernel and aggregates per triangle results
// into per primitive (organ) quantities expressed in physical units.
package caribu

import (
	"fmt"
	"time"

	"github.com/christian34/caribu/kernel"
	"github.com/christian34/caribu/kernel/raycast"
	"github.com/christian34/caribu/log"
	"github.com/christian34/caribu/scene"
	"github.com/christian34/caribu/types"
	"github.com/christian34/caribu/units"
)

// Options configure a new Scene. Only Scene is usually required; every other
// field has a default.
type Options struct {
	// Plant geometry. The zero value describes an empty scene.
	Scene scene.SceneInput

	// Light sources. Defaults to a single vertical source of unit energy.
	Light scene.LightInput

	// Domain rectangle, required for infinite canopies, soil meshes,
	// periodisation and bounded form factors.
	Pattern scene.PatternInput

	// Optical properties. Defaults to the default material in every band.
	Opt scene.OptInput

	// Soil reflectance per band.
	SoilReflectance map[string]float64

	// Soil mesh subdivision; nil or scene.NoSoil disables the soil.
	SoilMesh *int

	// Soil altitude in scene units. Defaults to the scene min z.
	ZSoil *float64

	// Length unit of the scene coordinates. Defaults to "m".
	SceneUnit string

	// Default values registry. Defaults to scene.StandardDefaults().
	Defaults *scene.Defaults

	// Single band kernel. Defaults to the raycast kernel.
	Kernel kernel.Solver

	// Multi band kernel. Defaults to kernel.Vectorize(Kernel).
	MultiBandKernel kernel.MultiBandSolver

	// Geometry periodisation kernel; required by RunPeriodise.
	Periodiser kernel.Periodiser
}

// A Scene holds a canopy description and runs light interception on it. A
// Scene is not safe for concurrent use.
type Scene struct {
	logger log.Logger

	defaults *scene.Defaults
	conv     units.Converter

	scene           scene.Scene
	materials       scene.MaterialTable
	soilReflectance map[string]float64
	lights          []types.Light
	pattern         *types.Pattern
	soil            []types.Triangle

	// Incremented whenever the soil or the geometry changes; run results
	// from an earlier generation cannot be used for soil energy queries.
	generation uint64

	solver     kernel.Solver
	multiBand  kernel.MultiBandSolver
	periodiser kernel.Periodiser
}

// Create a new scene. All inputs are validated eagerly.
func New(opts Options) (*Scene, error) {
	start := time.Now()
	s := &Scene{
		logger:     log.New("caribu scene"),
		defaults:   opts.Defaults,
		solver:     opts.Kernel,
		multiBand:  opts.MultiBandKernel,
		periodiser: opts.Periodiser,
	}
	if s.defaults == nil {
		s.defaults = scene.StandardDefaults()
	}
	if s.solver == nil {
		s.solver = raycast.New(raycast.Options{})
	}
	if s.multiBand == nil {
		s.multiBand = kernel.Vectorize(s.solver)
	}

	unit := opts.SceneUnit
	if unit == "" {
		unit = units.Meter
	}
	conv, err := s.defaults.Units().Converter(unit)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, err.Error())
	}
	s.conv = conv

	if s.scene, err = opts.Scene.Resolve(); err != nil {
		return nil, err
	}
	if s.lights, err = opts.Light.Resolve(s.defaults); err != nil {
		return nil, err
	}
	if s.pattern, err = opts.Pattern.Resolve(); err != nil {
		return nil, err
	}

	mats, err := scene.ResolveMaterials(s.scene, opts.Scene, opts.Opt, opts.SoilReflectance, s.defaults)
	if err != nil {
		return nil, err
	}
	s.materials = mats.Table
	s.soilReflectance = mats.SoilReflectance

	if s.pattern != nil && s.scene.Outside(*s.pattern) {
		s.logger.Warningf("scene footprint %v extends outside the pattern %v", s.scene.Footprint(), s.pattern.Tuple())
	}

	if err = s.AddSoil(opts.SoilMesh, opts.ZSoil); err != nil {
		return nil, err
	}

	s.logger.Infof(
		"loaded %d primitives (%d triangles), %d lights, %d bands in %d ms",
		len(s.scene), s.scene.TriangleCount(), len(s.lights), len(s.soilReflectance),
		time.Since(start).Nanoseconds()/1e6,
	)
	return s, nil
}

// Configure the soil mesh. A nil soilMesh or scene.NoSoil removes the soil.
// The soil must be added again after RunPeriodise.
func (s *Scene) AddSoil(soilMesh *int, zSoil *float64) error {
	soil, err := scene.BuildSoil(soilMesh, zSoil, s.pattern, s.scene)
	if err != nil {
		return err
	}
	if soil != nil {
		if _, reserved := s.scene[scene.SoilID]; reserved {
			return fmt.Errorf("%w: primitive id %q is reserved for the soil mesh", ErrConfiguration, scene.SoilID)
		}
	}
	s.soil = soil
	s.generation++
	return nil
}

// Get a copy of the scene geometry.
func (s *Scene) Triangles() scene.Scene {
	return s.scene.Clone()
}

// Get the domain pattern or nil if none is defined.
func (s *Scene) Pattern() *types.Pattern {
	if s.pattern == nil {
		return nil
	}
	p := *s.pattern
	return &p
}

// Get the soil mesh or nil if no soil is configured.
func (s *Scene) Soil() []types.Triangle {
	if s.soil == nil {
		return nil
	}
	return append([]types.Triangle(nil), s.soil...)
}

// Get a copy of the light sources.
func (s *Scene) Lights() []types.Light {
	return append([]types.Light(nil), s.lights...)
}

// Get a copy of the material table.
func (s *Scene) Materials() scene.MaterialTable {
	return s.materials.Clone()
}

// Get the soil reflectance of a band.
func (s *Scene) SoilReflectance(band string) (float64, bool) {
	rho, found := s.soilReflectance[band]
	return rho, found
}

// Get the band names in sorted order.
func (s *Scene) Bands() []string {
	return s.materials.Bands()
}

// Get the scene unit converter.
func (s *Scene) Converter() units.Converter {
	return s.conv
}
