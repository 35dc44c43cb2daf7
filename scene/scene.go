// Package scene builds the canonical plant scene representation (primitive
// id -> triangles), its optical properties, lights, pattern and soil from the
// input shapes accepted by the caribu package.
package scene

import (
	"fmt"
	"math"
	"sort"

	"github.com/christian34/caribu/log"
	"github.com/christian34/caribu/types"
	"github.com/paulmach/orb"
)

var logger = log.New("scene")

// The id reserved for the synthetic soil mesh.
const SoilID = "soil"

// A Scene maps primitive ids to their triangles.
type Scene map[string][]types.Triangle

// Get the primitive ids in sorted order. All components iterate primitives
// in this order.
func (s Scene) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get the total number of triangles.
func (s Scene) TriangleCount() int {
	count := 0
	for _, triangles := range s {
		count += len(triangles)
	}
	return count
}

// Get the min and max z coordinates over all triangles. An empty scene
// yields (0, 0).
func (s Scene) ZRange() (zmin, zmax float64) {
	zmin, zmax = math.Inf(1), math.Inf(-1)
	for _, triangles := range s {
		lo, hi := types.ZRange(triangles)
		zmin = math.Min(zmin, lo)
		zmax = math.Max(zmax, hi)
	}
	if zmin > zmax {
		return 0, 0
	}
	return zmin, zmax
}

// Get the horizontal bounding box of the scene.
func (s Scene) Footprint() orb.Bound {
	points := make(orb.MultiPoint, 0, 3*s.TriangleCount())
	for _, id := range s.IDs() {
		for _, tri := range s[id] {
			for _, pt := range tri {
				points = append(points, orb.Point{pt[0], pt[1]})
			}
		}
	}
	return points.Bound()
}

// Returns true if part of the scene lies outside the pattern when viewed
// from above. An empty scene is never outside.
func (s Scene) Outside(p types.Pattern) bool {
	if s.TriangleCount() == 0 {
		return false
	}
	fp := s.Footprint()
	return !p.Contains(fp.Min) || !p.Contains(fp.Max)
}

// Validate the scene structure. Every primitive must hold at least one
// triangle and all coordinates must be finite.
func (s Scene) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: scene does not define any primitive", ErrInvalidFormat)
	}
	for _, id := range s.IDs() {
		triangles := s[id]
		if len(triangles) == 0 {
			return fmt.Errorf("%w: primitive %q does not contain any triangle", ErrInvalidFormat, id)
		}
		for idx, tri := range triangles {
			if !tri.IsFinite() {
				return fmt.Errorf("%w: primitive %q: triangle %d has non finite coordinates", ErrInvalidFormat, id, idx)
			}
		}
	}
	return nil
}

// Create a deep copy of the scene.
func (s Scene) Clone() Scene {
	out := make(Scene, len(s))
	for id, triangles := range s {
		out[id] = append([]types.Triangle(nil), triangles...)
	}
	return out
}
