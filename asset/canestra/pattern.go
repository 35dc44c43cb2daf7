package canestra

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/christian34/caribu/asset"
	"github.com/christian34/caribu/types"
)

// Read a .8 pattern file. The first two non comment lines hold the
// (xmin, ymin) and (xmax, ymax) corners of the domain; additional lines
// are ignored.
func ReadPattern(res *asset.Resource) (types.Pattern, error) {
	corners := make([][2]float64, 0, 2)
	lineNum := 0

	scanner := bufio.NewScanner(res)
	for len(corners) < 2 && scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) < 2 {
			return types.Pattern{}, emitError(res.Path(), lineNum, "expected 2 coordinates; got %d", len(fields))
		}

		var pt [2]float64
		for i := 0; i < 2; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return types.Pattern{}, emitError(res.Path(), lineNum, "could not parse %q", fields[i])
			}
			pt[i] = v
		}
		corners = append(corners, pt)
	}
	if err := scanner.Err(); err != nil {
		return types.Pattern{}, err
	}
	if len(corners) != 2 {
		return types.Pattern{}, fmt.Errorf("%w: %s: expected 2 corner lines; got %d", ErrSyntax, res.Path(), len(corners))
	}

	return types.NewPattern(corners[0][0], corners[0][1], corners[1][0], corners[1][1]), nil
}

// Serialize a pattern into the .8 format.
func PatternString(p types.Pattern) string {
	t := p.Tuple()
	return fmt.Sprintf("%s %s\n%s %s\n",
		strconv.FormatFloat(t[0], 'g', -1, 64),
		strconv.FormatFloat(t[1], 'g', -1, 64),
		strconv.FormatFloat(t[2], 'g', -1, 64),
		strconv.FormatFloat(t[3], 'g', -1, 64),
	)
}
