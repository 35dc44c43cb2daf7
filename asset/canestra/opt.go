package canestra

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/christian34/caribu/asset"
	"github.com/christian34/caribu/types"
)

// The optical properties of one band as stored in a .opt file:
//
//	n 2
//	s d 0.15
//	e d 0.10
//	e d 0.10 0.05 d 0.12 0.04
//
// Species are numbered from 1 in order of appearance; species 0 is the soil.
type Opt struct {
	SoilReflectance float64
	Species         []types.Material
}

// Get the material of a species (1-based).
func (o *Opt) Material(opticalID int) (types.Material, error) {
	if opticalID < 1 || opticalID > len(o.Species) {
		return nil, fmt.Errorf("canestra: optical id %d not defined (%d species)", opticalID, len(o.Species))
	}
	return o.Species[opticalID-1], nil
}

// Read a .opt file.
func ReadOpt(res *asset.Resource) (*Opt, error) {
	opt := &Opt{Species: make([]types.Material, 0)}
	declared := -1
	hasSoil := false
	lineNum := 0

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "n":
			if len(fields) != 2 {
				return nil, emitError(res.Path(), lineNum, `unsupported syntax for "n"; expected 1 argument; got %d`, len(fields)-1)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 {
				return nil, emitError(res.Path(), lineNum, "invalid species count %q", fields[1])
			}
			declared = n
		case "s":
			faces, err := parseFaces(fields[1:])
			if err != nil || len(faces) != 1 || len(faces[0]) != 1 {
				return nil, emitError(res.Path(), lineNum, `unsupported syntax for "s"; expected "s d reflectance"`)
			}
			opt.SoilReflectance = faces[0][0]
			hasSoil = true
		case "e":
			faces, err := parseFaces(fields[1:])
			if err != nil {
				return nil, emitError(res.Path(), lineNum, "%s", err.Error())
			}
			mat, err := facesToMaterial(faces)
			if err != nil {
				return nil, emitError(res.Path(), lineNum, "%s", err.Error())
			}
			opt.Species = append(opt.Species, mat)
		default:
			return nil, emitError(res.Path(), lineNum, "unknown record %q", fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if !hasSoil {
		return nil, fmt.Errorf("%w: %s: missing soil record", ErrSyntax, res.Path())
	}
	if declared >= 0 && declared != len(opt.Species) {
		return nil, fmt.Errorf("%w: %s: declared %d species; found %d", ErrSyntax, res.Path(), declared, len(opt.Species))
	}
	return opt, nil
}

// Split "d v [v] d v [v]" tokens into per-face value lists.
func parseFaces(tokens []string) ([][]float64, error) {
	faces := make([][]float64, 0, 2)
	for _, tok := range tokens {
		if tok == "d" {
			faces = append(faces, make([]float64, 0, 2))
			continue
		}
		if len(faces) == 0 {
			return nil, fmt.Errorf(`expected face definition to start with "d"; got %q`, tok)
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse %q", tok)
		}
		faces[len(faces)-1] = append(faces[len(faces)-1], v)
	}
	return faces, nil
}

func facesToMaterial(faces [][]float64) (types.Material, error) {
	var mat types.Material
	switch {
	case len(faces) == 1 && len(faces[0]) == 1:
		mat = types.Material{faces[0][0]}
	case len(faces) == 2 && len(faces[0]) == 2 && len(faces[1]) == 2:
		mat = types.MaterialFromFaces(faces[0][0], faces[0][1], faces[1][0], faces[1][1])
	default:
		return nil, fmt.Errorf(`unsupported species definition; expected "d rho" or "d rho tau d rho tau"`)
	}
	if err := mat.Validate(); err != nil {
		return nil, err
	}
	return mat, nil
}

// Map every label to its material. Soil labels get an opaque material with
// the soil reflectance; opaque organs only keep the upper face reflectance.
func BuildMaterials(labels []string, opt *Opt) (map[string]types.Material, error) {
	out := make(map[string]types.Material, len(labels))
	for _, token := range labels {
		label, err := ParseLabel(token)
		if err != nil {
			return nil, err
		}

		if label.IsSoil() {
			out[token] = types.OpaqueMaterial(opt.SoilReflectance)
			continue
		}

		mat, err := opt.Material(label.OpticalID)
		if err != nil {
			return nil, err
		}
		if label.IsOpaque() {
			rhoSup, _, _, _ := mat.Faces()
			mat = types.OpaqueMaterial(rhoSup)
		}
		out[token] = mat
	}
	return out, nil
}

// Serialize a per triangle material list into the .opt format and generate
// the matching label for every triangle. Distinct materials become species
// numbered in order of first appearance; plantIDs provide the plant block
// of each label (the caller's primitive ordinal) and soil triangles must be
// flagged with isSoil.
func OptStringAndLabels(materials []types.Material, soilReflectance float64, plantIDs []int, isSoil []bool) (string, []string, error) {
	if len(materials) != len(plantIDs) || len(materials) != len(isSoil) {
		return "", nil, fmt.Errorf("canestra: got %d materials, %d plant ids and %d soil flags", len(materials), len(plantIDs), len(isSoil))
	}

	species := make([]types.Material, 0)
	labels := make([]string, len(materials))
	elementCount := make(map[int]int)
	for idx, mat := range materials {
		if isSoil[idx] {
			labels[idx] = Label{}.String()
			continue
		}

		opticalID := 0
		for sIdx, s := range species {
			if s.Equal(mat) {
				opticalID = sIdx + 1
				break
			}
		}
		if opticalID == 0 {
			species = append(species, mat)
			opticalID = len(species)
		}

		label := Label{
			OpticalID: opticalID,
			PlantID:   plantIDs[idx],
			ElementID: elementCount[plantIDs[idx]] % (maxElementID + 1),
		}
		if mat.Kind() != types.Opaque {
			label.LeafID = 1
		}
		if err := label.Validate(); err != nil {
			return "", nil, err
		}
		elementCount[plantIDs[idx]]++
		labels[idx] = label.String()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "n %d\n", len(species))
	fmt.Fprintf(&sb, "s d %s\n", strconv.FormatFloat(soilReflectance, 'g', -1, 64))
	for _, mat := range species {
		rhoSup, tauSup, rhoInf, tauInf := mat.Faces()
		if mat.Kind() == types.Opaque {
			fmt.Fprintf(&sb, "e d %s\n", strconv.FormatFloat(rhoSup, 'g', -1, 64))
			continue
		}
		fmt.Fprintf(&sb, "e d %s %s d %s %s\n",
			strconv.FormatFloat(rhoSup, 'g', -1, 64),
			strconv.FormatFloat(tauSup, 'g', -1, 64),
			strconv.FormatFloat(rhoInf, 'g', -1, 64),
			strconv.FormatFloat(tauInf, 'g', -1, 64),
		)
	}

	return sb.String(), labels, nil
}
