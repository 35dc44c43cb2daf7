// Package canestra reads and writes the legacy Canestra text formats used to
// exchange geometry (.can), light sources (.light), domain patterns (.8) and
// optical properties (.opt) with the light-transport kernel.
package canestra

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/christian34/caribu/asset"
	"github.com/christian34/caribu/types"
)

// A labelled triangle parsed from a geometry description.
type Entry struct {
	Label    string
	Triangle types.Triangle
}

// Parse a line oriented triangle description. Blank lines and lines starting
// with '#' are skipped. Every other line carries the label as its third token
// and ends with the nine coordinates of the triangle vertices:
//
//	p 1 100000101000 3 x1 y1 z1 x2 y2 z2 x3 y3 z3
func ParseTriangles(name string, r io.Reader) ([]Entry, error) {
	entries := make([]Entry, 0)
	lineNum := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 12 {
			return nil, emitError(name, lineNum, "expected a label and 9 coordinates; got %d tokens", len(fields))
		}

		var tri types.Triangle
		coords := fields[len(fields)-9:]
		for i, tok := range coords {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, emitError(name, lineNum, "could not parse coordinate %q", tok)
			}
			tri[i/3][i%3] = v
		}
		entries = append(entries, Entry{Label: fields[2], Triangle: tri})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Read a .can geometry file into a label -> triangles mapping.
func ReadCan(res *asset.Resource) (map[string][]types.Triangle, error) {
	entries, err := ParseTriangles(res.Path(), res)
	if err != nil {
		return nil, err
	}
	return Group(entries), nil
}

// Group labelled triangles by label preserving the triangle order.
func Group(entries []Entry) map[string][]types.Triangle {
	out := make(map[string][]types.Triangle)
	for _, e := range entries {
		out[e.Label] = append(out[e.Label], e.Triangle)
	}
	return out
}

// Serialize triangles and their labels into the .can format.
func TrianglesString(triangles []types.Triangle, labels []string) (string, error) {
	if len(triangles) != len(labels) {
		return "", fmt.Errorf("canestra: got %d triangles and %d labels", len(triangles), len(labels))
	}

	var sb strings.Builder
	for idx, tri := range triangles {
		sb.WriteString("p 1 ")
		sb.WriteString(labels[idx])
		sb.WriteString(" 3")
		for _, pt := range tri {
			for _, c := range pt {
				sb.WriteByte(' ')
				sb.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
