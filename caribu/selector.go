package caribu

import (
	"fmt"

	"github.com/christian34/caribu/kernel"
	"github.com/christian34/caribu/types"
)

// Build the kernel request shared by all bands.
func (s *Scene) request(geom *Geometry, mode kernel.Mode, opts RunOptions) (kernel.Request, error) {
	if mode == kernel.PeriodicRaycasting || mode == kernel.MixedRadiosity {
		if s.pattern == nil {
			return kernel.Request{}, fmt.Errorf("%w: infinite canopy illumination needs a pattern to be defined", ErrConfiguration)
		}
	}

	req := kernel.Request{
		Triangles:      geom.Triangles,
		Lights:         make([]types.Light, len(s.lights)),
		ScreenSize:     opts.ScreenSize,
		DiscResolution: opts.DiscResolution,
	}

	// Light energies are declared per m²; kernels work in scene units.
	for idx, l := range s.lights {
		req.Lights[idx] = types.Light{Energy: s.conv.LightEnergy(l.Energy), Direction: l.Direction}
	}

	switch mode {
	case kernel.PeriodicRaycasting:
		req.Domain = s.Pattern()
	case kernel.MixedRadiosity:
		if opts.DSphere < 0 {
			return kernel.Request{}, fmt.Errorf("%w: mixed radiosity needs a non negative sphere diameter; got %v", ErrConfiguration, opts.DSphere)
		}
		if opts.Layers < 1 {
			return kernel.Request{}, fmt.Errorf("%w: mixed radiosity needs at least one layer; got %d", ErrConfiguration, opts.Layers)
		}
		req.Domain = s.Pattern()
		req.Diameter = s.conv.Length(opts.DSphere)
		req.Layers = opts.Layers
		if opts.Height == nil && len(geom.Triangles) > 0 {
			_, req.Height = types.ZRange(geom.Triangles)
		} else if opts.Height != nil {
			req.Height = s.conv.Length(*opts.Height)
		}
	}
	return req, nil
}

// Select the light-transport mode and invoke the kernel. Single band
// geometries use the single band entry points; several bands are computed
// jointly. Outputs are keyed by band.
func (s *Scene) solve(geom *Geometry, opts RunOptions) (kernel.Mode, map[string]*kernel.Output, error) {
	mode := kernel.SelectMode(opts.Direct, opts.Infinite)
	req, err := s.request(geom, mode, opts)
	if err != nil {
		return mode, nil, err
	}

	s.logger.Debugf("selected %s for %d triangles and %d bands", mode, len(geom.Triangles), len(geom.Bands))

	if len(geom.Bands) == 1 {
		band := geom.Bands[0]
		req.Materials = geom.Materials[band]
		req.SoilReflectance = geom.SoilReflectance[band]
		out, err := kernel.Dispatch(s.solver, mode, &req)
		if err != nil {
			return mode, nil, fmt.Errorf("caribu: %s kernel: %w", mode, err)
		}
		return mode, map[string]*kernel.Output{band: out}, nil
	}

	outs, err := kernel.DispatchBands(s.multiBand, mode, &kernel.MultiBandRequest{
		Request:         req,
		Bands:           geom.Bands,
		BandMaterials:   geom.Materials,
		BandReflectance: geom.SoilReflectance,
	})
	if err != nil {
		return mode, nil, fmt.Errorf("caribu: %s kernel: %w", mode, err)
	}
	return mode, outs, nil
}
