package caribu

import (
	"fmt"
	"strings"
	"time"

	"github.com/christian34/caribu/asset/canestra"
	"github.com/christian34/caribu/scene"
	"github.com/christian34/caribu/types"
)

// Clip and replicate the scene so that it fits inside the pattern. The scene
// geometry is replaced in place: triangles keep the id of the primitive they
// were cut from, triangles whose label cannot be mapped back keep the raw
// Canestra label as id and soil triangles are dropped. The soil mesh is
// removed and must be added again with AddSoil.
func (s *Scene) RunPeriodise() (*Scene, error) {
	start := time.Now()
	if s.pattern == nil {
		return nil, fmt.Errorf("%w: periodisation needs a pattern to be defined", ErrConfiguration)
	}
	if s.periodiser == nil {
		return nil, fmt.Errorf("%w: no periodisation kernel configured", ErrConfiguration)
	}

	geom, err := s.assemble(false)
	if err != nil {
		return nil, err
	}

	can, err := s.canestraGeometry(geom)
	if err != nil {
		return nil, err
	}

	out, err := s.periodiser.Periodise(can, canestra.PatternString(*s.pattern))
	if err != nil {
		return nil, fmt.Errorf("caribu: periodise kernel: %w", err)
	}

	entries, err := canestra.ParseTriangles("periodised.can", strings.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, err.Error())
	}

	periodised := make(scene.Scene)
	for _, e := range entries {
		id, keep := primitiveForLabel(e.Label, geom.IDs)
		if !keep {
			continue
		}
		periodised[id] = append(periodised[id], e.Triangle)
	}

	s.materials = s.carryMaterials(periodised)
	s.scene = periodised
	s.soil = nil
	s.generation++

	s.logger.Noticef("periodised %d triangles into %d triangles in %d ms", len(geom.Triangles), periodised.TriangleCount(), time.Since(start).Nanoseconds()/1e6)
	return s, nil
}

// Serialize the scene geometry in the Canestra format. The soil mesh is not
// included. Labels encode the 1-based ordinal of the primitive id in sorted
// order as the plant number.
func (s *Scene) CanString() (string, error) {
	geom, err := s.assemble(false)
	if err != nil {
		return "", err
	}
	return s.canestraGeometry(geom)
}

// Serialize soil-free assembled geometry.
func (s *Scene) canestraGeometry(geom *Geometry) (string, error) {
	ordinals := make(map[string]int, len(geom.IDs))
	for idx, id := range geom.IDs {
		ordinals[id] = idx + 1
	}

	plantIDs := make([]int, len(geom.Groups))
	isSoil := make([]bool, len(geom.Groups))
	for idx, id := range geom.Groups {
		plantIDs[idx] = ordinals[id]
	}

	var (
		mats    []types.Material
		soilRho float64
	)
	if len(geom.Bands) > 0 {
		band := geom.Bands[0]
		mats, soilRho = geom.Materials[band], geom.SoilReflectance[band]
	}
	_, labels, err := canestra.OptStringAndLabels(mats, soilRho, plantIDs, isSoil)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidFormat, err.Error())
	}
	return canestra.TrianglesString(geom.Triangles, labels)
}

// Map a Canestra label back to the primitive id it was generated from. The
// plant block holds the 1-based ordinal of the id in sorted order. Returns
// false for soil triangles.
func primitiveForLabel(token string, ids []string) (string, bool) {
	label, err := canestra.ParseLabel(token)
	if err != nil {
		return token, true
	}
	if label.IsSoil() {
		return "", false
	}
	if label.PlantID < 1 || label.PlantID > len(ids) {
		return token, true
	}
	return ids[label.PlantID-1], true
}

// Build the material table of a periodised scene. Known ids keep their
// materials; new ids get the default material in every band.
func (s *Scene) carryMaterials(sc scene.Scene) scene.MaterialTable {
	table := make(scene.MaterialTable, len(s.materials))
	for band, byID := range s.materials {
		table[band] = make(map[string]types.Material, len(sc))
		for id := range sc {
			if mat, found := byID[id]; found {
				table[band][id] = mat
				continue
			}
			s.logger.Warningf("periodised primitive %q has no material in band %q; using the default material", id, band)
			table[band][id] = s.defaults.Material()
		}
	}
	return table
}
