package caribu

import (
	"fmt"
	"sort"
	"time"

	"github.com/christian34/caribu/kernel"
	"github.com/christian34/caribu/types"
)

const (
	formFactorSoilReflectance = 0.1
	formFactorHeightScale     = 1.01
)

// FormFactorOptions configure a form factor computation.
type FormFactorOptions struct {
	// Diameter (m) of the near field sphere. nil (or a non positive value)
	// computes form factors over the finite scene; otherwise the scene is
	// treated as an infinite canopy and the pattern is required.
	DSphere *float64

	DiscResolution int
	ScreenSize     int

	// Also compute the primitive x primitive matrix.
	Aggregate bool
}

// Get the default form factor options.
func DefaultFormFactorOptions() FormFactorOptions {
	return FormFactorOptions{
		DiscResolution: defaultDiscResolution,
		ScreenSize:     defaultScreenSize,
		Aggregate:      true,
	}
}

// FormFactorResult holds triangle and primitive visibility matrices.
type FormFactorResult struct {
	// The primitive id of every triangle (matrix row/column).
	Labels []string

	// Triangle x triangle form factors with both faces of each triangle
	// merged.
	Triangles [][]float64

	// Triangles with column i weighted by the share of triangle i in the
	// area of its primitive.
	Weighted [][]float64

	// Sorted primitive ids (Aggregated row/column).
	Primitives []string

	// Primitive x primitive form factors; nil unless requested.
	Aggregated [][]float64
}

// Compute the form factor matrix of the scene triangles. The soil is never
// included.
func (s *Scene) FormFactors(opts FormFactorOptions) (*FormFactorResult, error) {
	start := time.Now()
	if opts.ScreenSize <= 0 {
		opts.ScreenSize = defaultScreenSize
	}
	if opts.DiscResolution <= 0 {
		opts.DiscResolution = defaultDiscResolution
	}

	geom, err := s.assemble(false)
	if err != nil {
		return nil, err
	}

	n := len(geom.Triangles)
	req := &kernel.Request{
		Triangles:      geom.Triangles,
		Materials:      make([]types.Material, n),
		Lights:         []types.Light{s.defaults.Light()},
		ScreenSize:     opts.ScreenSize,
		DiscResolution: opts.DiscResolution,
		FormFactor:     true,
	}
	for idx := range req.Materials {
		req.Materials[idx] = types.TranslucentMaterial(1, 0)
	}

	mode := kernel.Radiosity
	if opts.DSphere != nil {
		if s.pattern == nil {
			return nil, fmt.Errorf("%w: infinite canopy form factors need a pattern to be defined", ErrConfiguration)
		}
		if diameter := s.conv.Length(*opts.DSphere); diameter > 0 {
			mode = kernel.MixedRadiosity
			req.Domain = s.Pattern()
			req.Diameter = diameter
			req.SoilReflectance = formFactorSoilReflectance
			req.Layers = 1
			if n > 0 {
				_, zmax := types.ZRange(geom.Triangles)
				req.Height = formFactorHeightScale * zmax
			}
		}
	}

	out, err := kernel.Dispatch(s.solver, mode, req)
	if err != nil {
		return nil, fmt.Errorf("caribu: %s kernel: %w", mode, err)
	}

	reduced, err := reduceFaces(out.FormFactor, n)
	if err != nil {
		return nil, fmt.Errorf("caribu: %s kernel: %w", mode, err)
	}
	areas, err := triangleAreas(out.Area, n)
	if err != nil {
		return nil, fmt.Errorf("caribu: %s kernel: %w", mode, err)
	}

	res := &FormFactorResult{
		Labels:    geom.Groups,
		Triangles: reduced,
		Weighted:  weightColumns(reduced, areas, geom.Groups),
	}
	res.Primitives = sortedLabels(geom.Groups)
	if opts.Aggregate {
		res.Aggregated = aggregateMatrix(res.Weighted, geom.Groups, res.Primitives)
	}

	s.logger.Noticef("computed %s form factors over %d triangles in %d ms", mode, n, time.Since(start).Nanoseconds()/1e6)
	return res, nil
}

// Merge the two faces of every triangle: each cell of the result is the sum
// of the matching 2x2 block of the face matrix, minus 2 on the diagonal.
func reduceFaces(ff [][]float64, n int) ([][]float64, error) {
	if len(ff) != 2*n {
		return nil, fmt.Errorf("%w: form factor matrix has %d rows; expected %d", kernel.ErrMisaligned, len(ff), 2*n)
	}
	for idx, row := range ff {
		if len(row) != 2*n {
			return nil, fmt.Errorf("%w: form factor row %d has %d values; expected %d", kernel.ErrMisaligned, idx, len(row), 2*n)
		}
	}

	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			out[i][j] = ff[2*i][2*j] + ff[2*i][2*j+1] + ff[2*i+1][2*j] + ff[2*i+1][2*j+1]
		}
		out[i][i] -= 2
	}
	return out, nil
}

// Get one area per triangle. Kernels may report one area per face, in which
// case faces are interleaved.
func triangleAreas(area []float64, n int) ([]float64, error) {
	switch len(area) {
	case n:
		return area, nil
	case 2 * n:
		out := make([]float64, n)
		for i := range out {
			out[i] = area[2*i]
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: got %d areas for %d triangles", kernel.ErrMisaligned, len(area), n)
}

// Weight column i by area_i / Σ area of the primitive triangle i belongs to.
func weightColumns(m [][]float64, areas []float64, labels []string) [][]float64 {
	totals := make(map[string]float64)
	for idx, label := range labels {
		totals[label] += areas[idx]
	}

	weights := make([]float64, len(areas))
	for idx, label := range labels {
		if totals[label] > 0 {
			weights[idx] = areas[idx] / totals[label]
		}
	}

	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v * weights[j]
		}
	}
	return out
}

// Sum matrix cells grouped by label on both axes.
func aggregateMatrix(m [][]float64, labels []string, primitives []string) [][]float64 {
	index := make(map[string]int, len(primitives))
	for idx, p := range primitives {
		index[p] = idx
	}

	out := make([][]float64, len(primitives))
	for idx := range out {
		out[idx] = make([]float64, len(primitives))
	}
	for i, row := range m {
		for j, v := range row {
			out[index[labels[i]]][index[labels[j]]] += v
		}
	}
	return out
}

func sortedLabels(labels []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, label := range labels {
		if _, found := seen[label]; !found {
			seen[label] = struct{}{}
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}
