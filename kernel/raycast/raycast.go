// Package raycast implements a first order light interception kernel. Each
// triangle is sampled at the centroids of a regular barycentric subdivision
// and a sample is lit by a light source when the ray cast from the sample
// towards the source does not hit any other triangle.
//
// Only the ray casting entry points are implemented; radiosity and form
// factor requests are rejected with kernel.ErrUnsupportedMode.
package raycast

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/christian34/caribu/kernel"
	"github.com/christian34/caribu/log"
	"github.com/christian34/caribu/types"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSubdivisions = 3

	// Upper bound for the number of replicated tiles on each side of the
	// domain in periodic mode.
	maxTiles = 10

	// Lights closer than this to the horizon do not contribute.
	minCosZenith = 1e-6
)

type Options struct {
	// Sample points per triangle edge; each triangle is sampled at
	// Subdivisions² points. Defaults to 3.
	Subdivisions int

	// Max number of concurrent workers. Defaults to the number of CPUs.
	Workers int

	// Tiles replicated on each side of the domain in periodic mode. When 0
	// or negative the count is derived from the canopy height and the
	// lowest light.
	Tiles int
}

// The Kernel type implements kernel.Solver.
type Kernel struct {
	logger log.Logger
	opts   Options

	// Barycentric (u, v) coordinates of the triangle sample points.
	samples [][2]float64
}

// Create a new ray casting kernel.
func New(opts Options) *Kernel {
	if opts.Subdivisions <= 0 {
		opts.Subdivisions = defaultSubdivisions
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Tiles < 0 {
		opts.Tiles = 0
	}
	if opts.Tiles > maxTiles {
		opts.Tiles = maxTiles
	}

	return &Kernel{
		logger:  log.New("raycast kernel"),
		opts:    opts,
		samples: samplePoints(opts.Subdivisions),
	}
}

// Generate the centroids of the n² sub-triangles of a regular subdivision.
func samplePoints(n int) [][2]float64 {
	out := make([][2]float64, 0, n*n)
	step := 1.0 / float64(n)
	for a := 0; a < n; a++ {
		for b := 0; b < n-a; b++ {
			out = append(out, [2]float64{(float64(a) + 1.0/3.0) * step, (float64(b) + 1.0/3.0) * step})
			if a+b <= n-2 {
				out = append(out, [2]float64{(float64(a) + 2.0/3.0) * step, (float64(b) + 2.0/3.0) * step})
			}
		}
	}
	return out
}

// Radiosity is not implemented by this kernel.
func (k *Kernel) Radiosity(req *kernel.Request) (*kernel.Output, error) {
	return nil, fmt.Errorf("%w: raycast kernel does not implement %s", kernel.ErrUnsupportedMode, kernel.Radiosity)
}

// MixedRadiosity is not implemented by this kernel.
func (k *Kernel) MixedRadiosity(req *kernel.Request) (*kernel.Output, error) {
	return nil, fmt.Errorf("%w: raycast kernel does not implement %s", kernel.ErrUnsupportedMode, kernel.MixedRadiosity)
}

// Compute first order interception. When req.Domain is set, the scene is
// replicated around the domain to emulate an infinite canopy.
func (k *Kernel) Raycasting(req *kernel.Request) (*kernel.Output, error) {
	if req.FormFactor {
		return nil, fmt.Errorf("%w: raycast kernel does not compute form factors", kernel.ErrUnsupportedMode)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	for idx, mat := range req.Materials {
		if err := mat.Validate(); err != nil {
			return nil, fmt.Errorf("raycast: triangle %d: %w", idx, err)
		}
	}

	start := time.Now()
	n := len(req.Triangles)
	out := &kernel.Output{
		Eabs:  make([]float64, n),
		Ei:    make([]float64, n),
		EiSup: make([]float64, n),
		EiInf: make([]float64, n),
		Area:  make([]float64, n),
	}
	if n == 0 {
		return out, nil
	}

	beams := k.beams(req.Lights)
	offsets := k.tileOffsets(req, beams)

	var g errgroup.Group
	g.SetLimit(k.opts.Workers)
	chunk := (n + k.opts.Workers - 1) / k.opts.Workers
	for first := 0; first < n; first += chunk {
		first, last := first, first+chunk
		if last > n {
			last = n
		}
		g.Go(func() error {
			for idx := first; idx < last; idx++ {
				k.shade(req, beams, offsets, idx, out)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mode := kernel.Raycasting
	if req.Domain != nil {
		mode = kernel.PeriodicRaycasting
	}
	k.logger.Infof("%s: %d triangles, %d lights, %d tiles in %d ms", mode, n, len(beams), len(offsets), time.Since(start).Nanoseconds()/1e6)
	return out, nil
}

// A light source converted into a normalized direction and the irradiance
// it delivers on a surface normal to that direction.
type beam struct {
	toLight    types.Vec3
	irradiance float64
}

func (k *Kernel) beams(lights []types.Light) []beam {
	out := make([]beam, 0, len(lights))
	for _, l := range lights {
		cosZ := l.CosZenith()
		if cosZ < minCosZenith {
			k.logger.Warningf("ignoring light with direction %v: source at the horizon", l.Direction)
			continue
		}
		out = append(out, beam{
			toLight:    l.Direction.Normalize().Mul(-1),
			irradiance: l.Energy / cosZ,
		})
	}
	return out
}

// Get the translations applied to the scene to emulate an infinite canopy.
// The first offset is always the identity.
func (k *Kernel) tileOffsets(req *kernel.Request, beams []beam) []types.Vec3 {
	offsets := []types.Vec3{{}}
	if req.Domain == nil {
		return offsets
	}

	dx, dy := req.Domain.Size()
	if dx <= 0 || dy <= 0 {
		return offsets
	}

	tiles := k.opts.Tiles
	if tiles == 0 {
		zmin, zmax := types.ZRange(req.Triangles)
		depth := zmax - zmin
		maxTan := 0.0
		for _, b := range beams {
			horiz := math.Hypot(b.toLight[0], b.toLight[1])
			maxTan = math.Max(maxTan, horiz/math.Abs(b.toLight[2]))
		}
		tiles = int(math.Ceil(depth*maxTan/math.Min(dx, dy))) + 1
		if tiles > maxTiles {
			tiles = maxTiles
		}
	}

	for i := -tiles; i <= tiles; i++ {
		for j := -tiles; j <= tiles; j++ {
			if i == 0 && j == 0 {
				continue
			}
			offsets = append(offsets, types.Vec3{float64(i) * dx, float64(j) * dy, 0})
		}
	}
	return offsets
}

// Compute the results for triangle idx.
func (k *Kernel) shade(req *kernel.Request, beams []beam, offsets []types.Vec3, idx int, out *kernel.Output) {
	tri := req.Triangles[idx]
	normal := tri.Normal()
	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])

	var eiSup, eiInf float64
	for _, b := range beams {
		cosI := normal.Dot(b.toLight)
		if cosI == 0 {
			continue
		}

		lit := 0
		for _, s := range k.samples {
			origin := tri[0].Add(e1.Mul(s[0])).Add(e2.Mul(s[1]))
			if !k.occluded(req.Triangles, offsets, idx, origin, b.toLight) {
				lit++
			}
		}

		ei := b.irradiance * math.Abs(cosI) * float64(lit) / float64(len(k.samples))
		if cosI > 0 {
			eiSup += ei
		} else {
			eiInf += ei
		}
	}

	rhoSup, tauSup, rhoInf, tauInf := req.Materials[idx].Faces()
	out.Area[idx] = tri.Area()
	out.EiSup[idx] = eiSup
	out.EiInf[idx] = eiInf
	out.Ei[idx] = eiSup + eiInf
	out.Eabs[idx] = eiSup*(1-rhoSup-tauSup) + eiInf*(1-rhoInf-tauInf)
}

// Returns true if the ray cast from origin along dir hits any triangle other
// than self, including the translated copies of the scene.
func (k *Kernel) occluded(triangles []types.Triangle, offsets []types.Vec3, self int, origin, dir types.Vec3) bool {
	for oIdx, offset := range offsets {
		// Translating the ray origin is equivalent to translating the scene.
		o := origin.Sub(offset)
		for tIdx, tri := range triangles {
			if oIdx == 0 && tIdx == self {
				continue
			}
			if _, hit := tri.Intersect(o, dir); hit {
				return true
			}
		}
	}
	return false
}
