package scene

import (
	"fmt"
	"sort"

	"github.com/christian34/caribu/asset"
	"github.com/christian34/caribu/asset/canestra"
	"github.com/christian34/caribu/types"
)

// A MaterialTable maps band -> primitive id -> material.
type MaterialTable map[string]map[string]types.Material

// Get the band names in sorted order.
func (t MaterialTable) Bands() []string {
	bands := make([]string, 0, len(t))
	for band := range t {
		bands = append(bands, band)
	}
	sort.Strings(bands)
	return bands
}

// Create a deep copy of the table.
func (t MaterialTable) Clone() MaterialTable {
	out := make(MaterialTable, len(t))
	for band, mats := range t {
		out[band] = make(map[string]types.Material, len(mats))
		for id, mat := range mats {
			out[band][id] = append(types.Material(nil), mat...)
		}
	}
	return out
}

type optKind uint8

const (
	optNone optKind = iota
	optBands
	optPrimitives
	optFiles
)

// OptInput describes the optical properties of the scene. The zero value
// selects the default material for every primitive.
type OptInput struct {
	kind       optKind
	bands      map[string]types.Material
	primitives MaterialTable
	paths      []string
}

// Assign one material per band to every primitive.
func OptBands(bands map[string]types.Material) OptInput {
	return OptInput{kind: optBands, bands: bands}
}

// Assign materials per band and primitive.
func OptPrimitives(table MaterialTable) OptInput {
	return OptInput{kind: optPrimitives, primitives: table}
}

// Load materials from .opt files, one per band. The band name is the file
// name up to its first dot. Requires a scene loaded from a .can file.
func OptFiles(paths ...string) OptInput {
	return OptInput{kind: optFiles, paths: paths}
}

// The resolved optical properties of a scene.
type Materials struct {
	Table           MaterialTable
	SoilReflectance map[string]float64
}

// Get the band names in sorted order.
func (m *Materials) Bands() []string {
	bands := make([]string, 0, len(m.SoilReflectance))
	for band := range m.SoilReflectance {
		bands = append(bands, band)
	}
	sort.Strings(bands)
	return bands
}

// Resolve the optical properties of sc. soilReflectance may be nil.
func ResolveMaterials(sc Scene, src SceneInput, opt OptInput, soilReflectance map[string]float64, def *Defaults) (*Materials, error) {
	if err := validateReflectances(soilReflectance); err != nil {
		return nil, err
	}

	switch opt.kind {
	case optNone:
		return defaultMaterials(sc, soilReflectance, def), nil
	case optFiles:
		if !src.IsCanFile() {
			return nil, fmt.Errorf("%w: optical property files require a scene loaded from a .can file", ErrInvalidFormat)
		}
		if soilReflectance != nil {
			logger.Warning("ignoring soil reflectance; optical property files define their own")
		}
		return materialsFromFiles(sc, opt.paths)
	case optBands:
		table, err := broadcastMaterials(sc, opt.bands)
		if err != nil {
			return nil, err
		}
		return withSoilReflectance(table, soilReflectance, def)
	case optPrimitives:
		if err := checkMaterialTable(sc, opt.primitives); err != nil {
			return nil, err
		}
		return withSoilReflectance(opt.primitives.Clone(), soilReflectance, def)
	}
	return nil, fmt.Errorf("%w: unrecognised opt format", ErrInvalidFormat)
}

func defaultMaterials(sc Scene, soilReflectance map[string]float64, def *Defaults) *Materials {
	out := &Materials{Table: make(MaterialTable), SoilReflectance: make(map[string]float64)}
	if soilReflectance == nil {
		out.SoilReflectance[def.Band()] = def.SoilReflectance()
	} else {
		for band, rho := range soilReflectance {
			out.SoilReflectance[band] = rho
		}
	}

	for band := range out.SoilReflectance {
		out.Table[band] = make(map[string]types.Material, len(sc))
		for id := range sc {
			out.Table[band][id] = def.Material()
		}
	}
	return out
}

func materialsFromFiles(sc Scene, paths []string) (*Materials, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: empty optical property file list", ErrInvalidFormat)
	}

	out := &Materials{Table: make(MaterialTable), SoilReflectance: make(map[string]float64)}
	for _, path := range paths {
		res, err := asset.NewResource(path, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, err.Error())
		}
		band := res.Stem()
		parsed, err := canestra.ReadOpt(res)
		res.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, err.Error())
		}

		mats, err := canestra.BuildMaterials(sc.IDs(), parsed)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrInvalidFormat, path, err.Error())
		}
		if _, exists := out.Table[band]; exists {
			return nil, fmt.Errorf("%w: band %q defined by more than one file", ErrInvalidFormat, band)
		}
		out.Table[band] = mats
		out.SoilReflectance[band] = parsed.SoilReflectance
	}
	return out, nil
}

func broadcastMaterials(sc Scene, bands map[string]types.Material) (MaterialTable, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: empty opt band mapping", ErrInvalidFormat)
	}

	table := make(MaterialTable, len(bands))
	for band, mat := range bands {
		if err := mat.Validate(); err != nil {
			return nil, fmt.Errorf("%w: band %q: %s", ErrInvalidFormat, band, err.Error())
		}
		table[band] = make(map[string]types.Material, len(sc))
		for id := range sc {
			table[band][id] = append(types.Material(nil), mat...)
		}
	}
	return table, nil
}

func checkMaterialTable(sc Scene, table MaterialTable) error {
	if len(table) == 0 {
		return fmt.Errorf("%w: empty opt band mapping", ErrInvalidFormat)
	}
	for _, band := range table.Bands() {
		mats := table[band]
		for _, id := range sc.IDs() {
			mat, exists := mats[id]
			if !exists {
				return fmt.Errorf("%w: band %q: no material for primitive %q", ErrInvalidFormat, band, id)
			}
			if err := mat.Validate(); err != nil {
				return fmt.Errorf("%w: band %q: primitive %q: %s", ErrInvalidFormat, band, id, err.Error())
			}
		}
	}
	return nil
}

func withSoilReflectance(table MaterialTable, soilReflectance map[string]float64, def *Defaults) (*Materials, error) {
	out := &Materials{Table: table, SoilReflectance: make(map[string]float64, len(table))}
	if soilReflectance == nil {
		for band := range table {
			out.SoilReflectance[band] = def.SoilReflectance()
		}
		return out, nil
	}

	if len(soilReflectance) != len(table) {
		return nil, fmt.Errorf("%w: the number of bands for optical properties (%d) and soil reflectance (%d) should match", ErrConfiguration, len(table), len(soilReflectance))
	}
	for band, rho := range soilReflectance {
		if _, exists := table[band]; !exists {
			return nil, fmt.Errorf("%w: soil reflectance defined for band %q which has no optical properties", ErrConfiguration, band)
		}
		out.SoilReflectance[band] = rho
	}
	return out, nil
}

func validateReflectances(soilReflectance map[string]float64) error {
	for band, rho := range soilReflectance {
		if !(rho >= 0 && rho <= 1) {
			return fmt.Errorf("%w: soil reflectance %v for band %q not in [0, 1]", ErrInvalidFormat, rho, band)
		}
	}
	return nil
}
