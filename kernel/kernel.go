// Package kernel defines the contract between the caribu orchestration layer
// and the light-transport kernels that compute per triangle irradiance.
package kernel

import (
	"fmt"

	"github.com/christian34/caribu/types"
)

// Names of the per triangle results produced by kernels.
const (
	ResultEabs  = "Eabs"
	ResultEi    = "Ei"
	ResultEiSup = "Ei_sup"
	ResultEiInf = "Ei_inf"
	ResultArea  = "area"
)

// The light-transport modes.
type Mode uint8

const (
	// First order ray casting over a finite scene.
	Raycasting Mode = iota

	// First order ray casting with the scene replicated over the domain.
	PeriodicRaycasting

	// Multiple scattering over a finite scene.
	Radiosity

	// Radiosity within a sphere combined with a layered far field
	// approximation for infinite canopies.
	MixedRadiosity
)

func (m Mode) String() string {
	switch m {
	case Raycasting:
		return "raycasting"
	case PeriodicRaycasting:
		return "periodic raycasting"
	case Radiosity:
		return "radiosity"
	case MixedRadiosity:
		return "mixed radiosity"
	}
	return "unknown"
}

// Select the mode for the requested fidelity.
func SelectMode(direct, infinite bool) Mode {
	switch {
	case direct && !infinite:
		return Raycasting
	case direct && infinite:
		return PeriodicRaycasting
	case !direct && !infinite:
		return Radiosity
	}
	return MixedRadiosity
}

// A Request describes a single band computation. Lengths are expressed in
// scene units and light energies per squared scene unit.
type Request struct {
	Triangles []types.Triangle
	Materials []types.Material
	Lights    []types.Light

	// The periodic domain; nil for finite scenes.
	Domain *types.Pattern

	// Reflectance of the far field soil (mixed radiosity).
	SoilReflectance float64

	// Projection settings for visibility computations.
	ScreenSize     int
	DiscResolution int

	// Mixed radiosity settings.
	Diameter float64
	Layers   int
	Height   float64

	// Request the triangle form factor matrix.
	FormFactor bool
}

// Validate the request structure.
func (r *Request) Validate() error {
	if len(r.Triangles) != len(r.Materials) {
		return fmt.Errorf("%w: got %d triangles and %d materials", ErrMisaligned, len(r.Triangles), len(r.Materials))
	}
	return nil
}

// A MultiBandRequest describes a joint computation over several bands that
// share geometry and lights.
type MultiBandRequest struct {
	Request

	Bands           []string
	BandMaterials   map[string][]types.Material
	BandReflectance map[string]float64
}

// Extract the single band request for band.
func (r *MultiBandRequest) Band(band string) *Request {
	req := r.Request
	req.Materials = r.BandMaterials[band]
	req.SoilReflectance = r.BandReflectance[band]
	return &req
}

// Validate the request structure.
func (r *MultiBandRequest) Validate() error {
	for _, band := range r.Bands {
		if err := r.Band(band).Validate(); err != nil {
			return fmt.Errorf("band %q: %w", band, err)
		}
	}
	return nil
}

// The per triangle results of a computation. All slices are index-aligned
// with the request triangles. FormFactor is a 2N x 2N matrix over the two
// faces of each triangle; in that case Area holds 2N values.
type Output struct {
	Eabs  []float64
	Ei    []float64
	EiSup []float64
	EiInf []float64
	Area  []float64

	FormFactor [][]float64
}

// Get a per triangle result by name.
func (o *Output) Values(name string) ([]float64, bool) {
	switch name {
	case ResultEabs:
		return o.Eabs, o.Eabs != nil
	case ResultEi:
		return o.Ei, o.Ei != nil
	case ResultEiSup:
		return o.EiSup, o.EiSup != nil
	case ResultEiInf:
		return o.EiInf, o.EiInf != nil
	case ResultArea:
		return o.Area, o.Area != nil
	}
	return nil, false
}

// Check that the named results hold exactly n values.
func (o *Output) CheckAligned(n int, names ...string) error {
	for _, name := range names {
		values, found := o.Values(name)
		if !found {
			return fmt.Errorf("%w: missing result %q", ErrMisaligned, name)
		}
		if len(values) != n {
			return fmt.Errorf("%w: result %q has %d values; expected %d", ErrMisaligned, name, len(values), n)
		}
	}
	return nil
}

// Create a deep copy of the output.
func (o *Output) Clone() *Output {
	dup := func(v []float64) []float64 {
		if v == nil {
			return nil
		}
		return append([]float64(nil), v...)
	}
	out := &Output{
		Eabs:  dup(o.Eabs),
		Ei:    dup(o.Ei),
		EiSup: dup(o.EiSup),
		EiInf: dup(o.EiInf),
		Area:  dup(o.Area),
	}
	if o.FormFactor != nil {
		out.FormFactor = make([][]float64, len(o.FormFactor))
		for i, row := range o.FormFactor {
			out.FormFactor[i] = dup(row)
		}
	}
	return out
}
