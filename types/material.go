package types

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMaterial = errors.New("material: expected 1, 2 or 4 values in [0, 1]")
)

// The optical behaviour encoded by a material.
type MaterialKind uint8

const (
	Opaque MaterialKind = iota
	SymmetricTranslucent
	AsymmetricTranslucent
)

func (k MaterialKind) String() string {
	switch k {
	case Opaque:
		return "opaque"
	case SymmetricTranslucent:
		return "symmetric translucent"
	case AsymmetricTranslucent:
		return "asymmetric translucent"
	}
	return "unknown"
}

// A material is a 1, 2 or 4 value tuple:
//   - (reflectance) for opaque surfaces
//   - (reflectance, transmittance) for symmetric translucent surfaces
//   - (reflectance_sup, transmittance_sup, reflectance_inf, transmittance_inf)
//     for asymmetric translucent surfaces
type Material []float64

// Create an opaque material.
func OpaqueMaterial(reflectance float64) Material {
	return Material{reflectance}
}

// Create a symmetric translucent material.
func TranslucentMaterial(reflectance, transmittance float64) Material {
	return Material{reflectance, transmittance}
}

// Validate the material tuple.
func (m Material) Validate() error {
	switch len(m) {
	case 1, 2, 4:
	default:
		return fmt.Errorf("%w; got %d values", ErrInvalidMaterial, len(m))
	}
	for _, v := range m {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w; got %v", ErrInvalidMaterial, []float64(m))
		}
	}
	return nil
}

// Get the material kind. The result is only meaningful for valid materials.
func (m Material) Kind() MaterialKind {
	switch len(m) {
	case 2:
		return SymmetricTranslucent
	case 4:
		return AsymmetricTranslucent
	}
	return Opaque
}

// Expand the material into per-face reflectance and transmittance.
func (m Material) Faces() (rhoSup, tauSup, rhoInf, tauInf float64) {
	switch len(m) {
	case 1:
		return m[0], 0, m[0], 0
	case 2:
		return m[0], m[1], m[0], m[1]
	case 4:
		return m[0], m[1], m[2], m[3]
	}
	return 0, 0, 0, 0
}

// Returns true if both materials encode the same tuple.
func (m Material) Equal(other Material) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i] != other[i] {
			return false
		}
	}
	return true
}

// Build the most compact material equivalent to the given per-face values.
func MaterialFromFaces(rhoSup, tauSup, rhoInf, tauInf float64) Material {
	switch {
	case rhoSup == rhoInf && tauSup == 0 && tauInf == 0:
		return Material{rhoSup}
	case rhoSup == rhoInf && tauSup == tauInf:
		return Material{rhoSup, tauSup}
	}
	return Material{rhoSup, tauSup, rhoInf, tauInf}
}
