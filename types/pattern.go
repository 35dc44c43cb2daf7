package types

import (
	"math"

	"github.com/paulmach/orb"
)

// A pattern is the axis-aligned rectangle bounding the scene for periodic
// replication and soil placement.
type Pattern struct {
	orb.Bound
}

// Create a pattern from two opposite corners. Corners are normalized so that
// Min holds the smallest coordinates.
func NewPattern(xmin, ymin, xmax, ymax float64) Pattern {
	return Pattern{orb.MultiPoint{{xmin, ymin}, {xmax, ymax}}.Bound()}
}

// Get the pattern as a (xmin, ymin, xmax, ymax) tuple.
func (p Pattern) Tuple() [4]float64 {
	return [4]float64{p.Min[0], p.Min[1], p.Max[0], p.Max[1]}
}

// Get the pattern extent along x and y.
func (p Pattern) Size() (dx, dy float64) {
	return p.Max[0] - p.Min[0], p.Max[1] - p.Min[1]
}

// Get the pattern area in squared scene units.
func (p Pattern) Area() float64 {
	dx, dy := p.Size()
	return math.Abs(dx * dy)
}
