package scene

import (
	"fmt"

	"github.com/christian34/caribu/types"
)

// NoSoil disables the soil mesh.
const NoSoil = -1

// Generate a planar mesh spanning the pattern at altitude z. The mesh is made
// of the two triangles (a, b, c) and (b, d, c) where a, b, c, d are the
// (xmin, ymin), (xmax, ymin), (xmin, ymax) and (xmax, ymax) corners.
// Subdivision is not supported: subdiv must be 0 or 1.
func DomainMesh(p types.Pattern, z float64, subdiv int) ([]types.Triangle, error) {
	if subdiv > 1 {
		return nil, fmt.Errorf("%w: soil mesh subdivision (%d) not implemented", ErrConfiguration, subdiv)
	}

	t := p.Tuple()
	a := types.XYZ(t[0], t[1], z)
	b := types.XYZ(t[2], t[1], z)
	c := types.XYZ(t[0], t[3], z)
	d := types.XYZ(t[2], t[3], z)
	return []types.Triangle{{a, b, c}, {b, d, c}}, nil
}

// Build the soil mesh for a scene. A nil soilMesh or NoSoil disables the
// soil. When zSoil is nil the soil is placed at the scene minimum altitude
// (0 for an empty scene).
func BuildSoil(soilMesh *int, zSoil *float64, pattern *types.Pattern, sc Scene) ([]types.Triangle, error) {
	if soilMesh == nil || *soilMesh == NoSoil {
		return nil, nil
	}
	if *soilMesh < NoSoil {
		return nil, fmt.Errorf("%w: invalid soil mesh subdivision %d", ErrInvalidFormat, *soilMesh)
	}
	if pattern == nil {
		return nil, fmt.Errorf("%w: adding a soil needs the scene domain (pattern) to be defined", ErrConfiguration)
	}

	var z float64
	if zSoil != nil {
		z = *zSoil
	} else {
		z, _ = sc.ZRange()
	}
	return DomainMesh(*pattern, z, *soilMesh)
}
