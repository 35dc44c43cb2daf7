package caribu

import (
	"fmt"
	"sort"
	"time"

	"github.com/christian34/caribu/kernel"
	"github.com/christian34/caribu/scene"
	"github.com/christian34/caribu/types"
	"github.com/google/uuid"
)

// RunOptions select the light-transport mode and its settings. Use
// DefaultRunOptions to obtain the documented defaults.
type RunOptions struct {
	// Compute first order interception only.
	Direct bool

	// Treat the scene as an infinite canopy replicated over the pattern.
	Infinite bool

	// Diameter (m) of the near field sphere for mixed radiosity.
	DSphere float64

	// Number of far field layers for mixed radiosity.
	Layers int

	// Canopy height (m) for mixed radiosity; nil selects the max z of the
	// scene.
	Height *float64

	// Projection settings. Zero values select the defaults.
	ScreenSize     int
	DiscResolution int

	// Also report the irradiance of each triangle face (Ei_sup, Ei_inf).
	SplitFace bool

	// Fill RunResult.Simplified for single band scenes.
	Simplify bool
}

const (
	defaultScreenSize     = 1536
	defaultDiscResolution = 52
)

// Get the default run options: direct finite ray casting.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		Direct:         true,
		DSphere:        0.5,
		Layers:         10,
		ScreenSize:     defaultScreenSize,
		DiscResolution: defaultDiscResolution,
	}
}

// The results of a single band.
type BandResult struct {
	Raw        RawResult
	Aggregated AggregatedResult
}

// RunResult holds the outcome of a Run call. Soil results are kept apart
// from the primitive results and are only present when a soil mesh was
// configured.
type RunResult struct {
	ID    uuid.UUID
	Mode  kernel.Mode
	Bands []string

	// Per band results keyed by band name.
	Raw        map[string]RawResult
	Aggregated map[string]AggregatedResult

	// Per band soil results (result name -> values) keyed by band name.
	SoilRaw        map[string]map[string][]float64
	SoilAggregated map[string]map[string]float64

	// Per band optical properties of each primitive, soil excluded.
	Materials map[string]map[string]types.Material

	// The single band results when simplification was requested.
	Simplified *BandResult

	// The scene and the soil generation the results were computed on.
	scene      *Scene
	generation uint64
}

// Get the results of a band. An empty band name selects the single band of
// a monochromatic run.
func (r *RunResult) Band(band string) (*BandResult, error) {
	band, err := r.resolveBand(band)
	if err != nil {
		return nil, err
	}
	return &BandResult{Raw: r.Raw[band], Aggregated: r.Aggregated[band]}, nil
}

func (r *RunResult) resolveBand(band string) (string, error) {
	if band == "" {
		if len(r.Bands) != 1 {
			return "", fmt.Errorf("caribu: run computed %d bands; a band name is required", len(r.Bands))
		}
		return r.Bands[0], nil
	}
	idx := sort.SearchStrings(r.Bands, band)
	if idx == len(r.Bands) || r.Bands[idx] != band {
		return "", fmt.Errorf("caribu: unknown band %q", band)
	}
	return band, nil
}

// Get the names of the results computed by a run.
func resultNames(splitFace bool) []string {
	names := []string{kernel.ResultEabs, kernel.ResultEi, kernel.ResultArea}
	if splitFace {
		names = append(names, kernel.ResultEiInf, kernel.ResultEiSup)
	}
	return names
}

// Compute light interception. Per triangle kernel results are converted to
// physical units (m², m⁻²) and aggregated per primitive: areas are summed and
// other results are area-weighted means.
func (s *Scene) Run(opts RunOptions) (*RunResult, error) {
	start := time.Now()
	if opts.ScreenSize <= 0 {
		opts.ScreenSize = defaultScreenSize
	}
	if opts.DiscResolution <= 0 {
		opts.DiscResolution = defaultDiscResolution
	}

	geom, err := s.assemble(true)
	if err != nil {
		return nil, err
	}

	mode, outputs, err := s.solve(geom, opts)
	if err != nil {
		return nil, err
	}

	names := resultNames(opts.SplitFace)
	res := &RunResult{
		ID:         uuid.New(),
		Mode:       mode,
		Bands:      geom.Bands,
		Raw:        make(map[string]RawResult, len(geom.Bands)),
		Aggregated: make(map[string]AggregatedResult, len(geom.Bands)),
		Materials:  make(map[string]map[string]types.Material, len(geom.Bands)),
		scene:      s,
		generation: s.generation,
	}
	if s.soil != nil {
		res.SoilRaw = make(map[string]map[string][]float64, len(geom.Bands))
		res.SoilAggregated = make(map[string]map[string]float64, len(geom.Bands))
	}

	for _, band := range geom.Bands {
		out := outputs[band]
		if out == nil {
			return nil, fmt.Errorf("caribu: %s kernel: %w: no output for band %q", mode, kernel.ErrMisaligned, band)
		}
		if err = out.CheckAligned(len(geom.Triangles), names...); err != nil {
			return nil, fmt.Errorf("caribu: %s kernel: band %q: %w", mode, band, err)
		}

		raw, agg := aggregate(s.conv.Convert(out), geom.Groups, names)
		if s.soil != nil {
			res.SoilRaw[band], res.SoilAggregated[band] = extractGroup(raw, agg, scene.SoilID)
		}
		res.Raw[band] = raw
		res.Aggregated[band] = agg

		mats := groupFirst(geom.Materials[band], geom.Groups)
		delete(mats, scene.SoilID)
		res.Materials[band] = mats
	}

	if opts.Simplify && len(geom.Bands) == 1 {
		band := geom.Bands[0]
		res.Simplified = &BandResult{Raw: res.Raw[band], Aggregated: res.Aggregated[band]}
	}

	s.logger.Noticef("computed %s over %d triangles and %d bands in %d ms", mode, len(geom.Triangles), len(geom.Bands), time.Since(start).Nanoseconds()/1e6)
	return res, nil
}
