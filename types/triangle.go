package types

import "math"

// A triangle is an ordered triple of points expressed in scene units.
type Triangle [3]Vec3

// Get the triangle area.
func (t Triangle) Area() float64 {
	return 0.5 * t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Len()
}

// Get the unit normal of the triangle. The upper face is the one the normal
// points away from; vertex order defines it.
func (t Triangle) Normal() Vec3 {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Normalize()
}

// Returns true if all vertex coordinates are finite.
func (t Triangle) IsFinite() bool {
	return t[0].IsFinite() && t[1].IsFinite() && t[2].IsFinite()
}

// Return the min and max z coordinate over a triangle list. An empty list
// yields (+Inf, -Inf).
func ZRange(triangles []Triangle) (zmin, zmax float64) {
	zmin, zmax = math.Inf(1), math.Inf(-1)
	for _, tri := range triangles {
		for _, pt := range tri {
			zmin = math.Min(zmin, pt[2])
			zmax = math.Max(zmax, pt[2])
		}
	}
	return zmin, zmax
}

// Intersect a ray with the triangle using the Moller-Trumbore algorithm.
// Returns the distance along dir and true when the ray hits the triangle
// strictly in front of its origin.
func (t Triangle) Intersect(origin, dir Vec3) (float64, bool) {
	const eps = 1e-9

	e1 := t[1].Sub(t[0])
	e2 := t[2].Sub(t[0])
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < eps {
		return 0, false
	}
	inv := 1.0 / det

	s := origin.Sub(t[0])
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	dist := e2.Dot(q) * inv
	if dist <= eps {
		return 0, false
	}
	return dist, true
}
