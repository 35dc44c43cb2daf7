package canestra

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/christian34/caribu/asset"
	"github.com/christian34/caribu/types"
)

// Read a .light file. Each non comment line holds an energy followed by the
// x, y, z components of the light direction.
func ReadLight(res *asset.Resource) ([]types.Light, error) {
	lights := make([]types.Light, 0)
	lineNum := 0

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) != 4 {
			return nil, emitError(res.Path(), lineNum, "expected 4 values (energy vx vy vz); got %d", len(fields))
		}

		var values [4]float64
		for i, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, emitError(res.Path(), lineNum, "could not parse %q", tok)
			}
			values[i] = v
		}
		lights = append(lights, types.Light{
			Energy:    values[0],
			Direction: types.Vec3{values[1], values[2], values[3]},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lights, nil
}

// Serialize light sources into the .light format.
func LightString(lights []types.Light) string {
	var sb strings.Builder
	for _, l := range lights {
		sb.WriteString(strconv.FormatFloat(l.Energy, 'g', -1, 64))
		for _, c := range l.Direction {
			sb.WriteByte(' ')
			sb.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
