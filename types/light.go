package types

import (
	"errors"
	"math"
)

var (
	ErrZeroDirection       = errors.New("light: direction vector has zero length")
	ErrHorizontalDirection = errors.New("light: horizontal direction does not reach a horizontal surface")
)

// A directional light source. Energy is a horizontal irradiance expressed
// per square meter; the direction points from the source towards the scene
// and need not be normalized.
type Light struct {
	Energy    float64
	Direction Vec3
}

// Validate the light source. Horizontal lights are rejected as their energy
// per unit area normal to the beam is unbounded.
func (l Light) Validate() error {
	if l.Direction.Len() < floatCmpEpsilon || !l.Direction.IsFinite() {
		return ErrZeroDirection
	}
	if l.CosZenith() < floatCmpEpsilon {
		return ErrHorizontalDirection
	}
	return nil
}

// Get the absolute cosine between the light direction and the vertical axis.
func (l Light) CosZenith() float64 {
	n := l.Direction.Len()
	if n < floatCmpEpsilon {
		return 0
	}
	return math.Abs(l.Direction[2] / n)
}
