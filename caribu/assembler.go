package caribu

import (
	"fmt"

	"github.com/christian34/caribu/scene"
	"github.com/christian34/caribu/types"
)

// Geometry is the flattened scene handed to kernels. Triangles, Groups and
// the per band material lists are index-aligned.
type Geometry struct {
	Triangles []types.Triangle

	// The primitive id of each triangle; soil triangles use scene.SoilID.
	Groups []string

	// Sorted primitive ids, soil excluded.
	IDs []string

	Bands           []string
	Materials       map[string][]types.Material
	SoilReflectance map[string]float64
}

func (g *Geometry) validate() error {
	if len(g.Groups) != len(g.Triangles) {
		return fmt.Errorf("caribu: assembled %d triangles and %d group labels", len(g.Triangles), len(g.Groups))
	}
	for _, band := range g.Bands {
		if len(g.Materials[band]) != len(g.Triangles) {
			return fmt.Errorf("caribu: band %q: assembled %d triangles and %d materials", band, len(g.Triangles), len(g.Materials[band]))
		}
	}
	return nil
}

// Flatten the scene in sorted primitive id order. When withSoil is set and
// a soil mesh is configured, its triangles are appended last.
func (s *Scene) assemble(withSoil bool) (*Geometry, error) {
	count := s.scene.TriangleCount()
	if withSoil {
		count += len(s.soil)
	}

	geom := &Geometry{
		Triangles:       make([]types.Triangle, 0, count),
		Groups:          make([]string, 0, count),
		IDs:             s.scene.IDs(),
		Bands:           s.materials.Bands(),
		Materials:       make(map[string][]types.Material),
		SoilReflectance: make(map[string]float64),
	}

	for _, band := range geom.Bands {
		geom.Materials[band] = make([]types.Material, 0, count)
		geom.SoilReflectance[band] = s.soilReflectance[band]
	}

	for _, id := range geom.IDs {
		triangles := s.scene[id]
		geom.Triangles = append(geom.Triangles, triangles...)
		for range triangles {
			geom.Groups = append(geom.Groups, id)
		}

		for _, band := range geom.Bands {
			mat, found := s.materials[band][id]
			if !found {
				return nil, fmt.Errorf("%w: band %q: no material for primitive %q", ErrInvalidFormat, band, id)
			}
			for range triangles {
				geom.Materials[band] = append(geom.Materials[band], mat)
			}
		}
	}

	if withSoil && s.soil != nil {
		geom.Triangles = append(geom.Triangles, s.soil...)
		for range s.soil {
			geom.Groups = append(geom.Groups, scene.SoilID)
		}
		for _, band := range geom.Bands {
			soilMat := types.OpaqueMaterial(geom.SoilReflectance[band])
			for range s.soil {
				geom.Materials[band] = append(geom.Materials[band], soilMat)
			}
		}
	}

	if err := geom.validate(); err != nil {
		return nil, err
	}
	return geom, nil
}
