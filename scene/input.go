package scene

import (
	"fmt"

	"github.com/christian34/caribu/asset"
	"github.com/christian34/caribu/asset/canestra"
	"github.com/christian34/caribu/asset/wavefront"
	"github.com/christian34/caribu/types"
)

// A GeometryProvider adapts a domain object (e.g. a plant architecture
// model) into the canonical primitive id -> triangles mapping.
type GeometryProvider interface {
	Geometry() (map[string][]types.Triangle, error)
}

type sceneKind uint8

const (
	sceneNone sceneKind = iota
	sceneTriangles
	sceneCanFile
	sceneWavefront
	sceneProvider
)

// SceneInput describes where the scene geometry comes from. The zero value
// describes an empty scene.
type SceneInput struct {
	kind      sceneKind
	triangles map[string][]types.Triangle
	path      string
	provider  GeometryProvider
}

// Use a primitive id -> triangles mapping.
func FromTriangles(triangles map[string][]types.Triangle) SceneInput {
	return SceneInput{kind: sceneTriangles, triangles: triangles}
}

// Load geometry from a Canestra .can file. Primitive ids are the file labels.
func FromCanFile(path string) SceneInput {
	return SceneInput{kind: sceneCanFile, path: path}
}

// Load geometry from a Wavefront .obj file. Primitive ids are the object or
// group names.
func FromWavefront(path string) SceneInput {
	return SceneInput{kind: sceneWavefront, path: path}
}

// Load geometry from a provider.
func FromProvider(provider GeometryProvider) SceneInput {
	return SceneInput{kind: sceneProvider, provider: provider}
}

// Returns true if the geometry is read from a Canestra file.
func (in SceneInput) IsCanFile() bool {
	return in.kind == sceneCanFile
}

// Build the scene. The zero SceneInput yields a nil Scene.
func (in SceneInput) Resolve() (Scene, error) {
	var (
		raw map[string][]types.Triangle
		err error
	)

	switch in.kind {
	case sceneNone:
		return nil, nil
	case sceneTriangles:
		raw = in.triangles
	case sceneCanFile:
		raw, err = readFile(in.path, canestra.ReadCan)
	case sceneWavefront:
		raw, err = readFile(in.path, wavefront.ReadScene)
	case sceneProvider:
		if in.provider == nil {
			return nil, fmt.Errorf("%w: nil geometry provider", ErrInvalidFormat)
		}
		raw, err = in.provider.Geometry()
		if err != nil {
			return nil, fmt.Errorf("%w: geometry provider: %s", ErrInvalidFormat, err.Error())
		}
	default:
		return nil, fmt.Errorf("%w: unrecognised scene format", ErrInvalidFormat)
	}
	if err != nil {
		return nil, err
	}

	sc := Scene(raw).Clone()
	if err = sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func readFile[T any](path string, reader func(*asset.Resource) (T, error)) (T, error) {
	var out T
	res, err := asset.NewResource(path, nil)
	if err != nil {
		return out, fmt.Errorf("%w: %s", ErrInvalidFormat, err.Error())
	}
	defer res.Close()

	out, err = reader(res)
	if err != nil {
		return out, fmt.Errorf("%w: %s", ErrInvalidFormat, err.Error())
	}
	return out, nil
}

// LightInput describes the light sources. The zero value selects the
// default light.
type LightInput struct {
	set    bool
	lights []types.Light
	path   string
}

// Use a list of light sources.
func Lights(lights ...types.Light) LightInput {
	return LightInput{set: true, lights: lights}
}

// Load light sources from a .light file.
func LightFile(path string) LightInput {
	return LightInput{set: true, path: path}
}

// Build the light list.
func (in LightInput) Resolve(def *Defaults) ([]types.Light, error) {
	if !in.set {
		return []types.Light{def.Light()}, nil
	}

	lights := in.lights
	if in.path != "" {
		var err error
		if lights, err = readFile(in.path, canestra.ReadLight); err != nil {
			return nil, err
		}
	}

	if len(lights) == 0 {
		return nil, fmt.Errorf("%w: empty light list", ErrInvalidFormat)
	}
	for idx, l := range lights {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("%w: light %d: %s", ErrInvalidFormat, idx, err.Error())
		}
	}
	return append([]types.Light(nil), lights...), nil
}

type patternKind uint8

const (
	patternNone patternKind = iota
	patternValues
	patternFile
)

// PatternInput describes the domain rectangle. The zero value means that no
// pattern is defined.
type PatternInput struct {
	kind   patternKind
	values []float64
	path   string
}

// Define the pattern from its bounds.
func PatternBounds(xmin, ymin, xmax, ymax float64) PatternInput {
	return PatternValues(xmin, ymin, xmax, ymax)
}

// Define the pattern from two opposite corners.
func PatternCorners(a, b [2]float64) PatternInput {
	return PatternValues(a[0], a[1], b[0], b[1])
}

// Define the pattern from a flat (xmin, ymin, xmax, ymax) value list.
func PatternValues(values ...float64) PatternInput {
	return PatternInput{kind: patternValues, values: values}
}

// Load the pattern from a .8 file.
func PatternFile(path string) PatternInput {
	return PatternInput{kind: patternFile, path: path}
}

// Build the pattern. Returns nil if no pattern is defined.
func (in PatternInput) Resolve() (*types.Pattern, error) {
	var p types.Pattern
	switch in.kind {
	case patternNone:
		return nil, nil
	case patternValues:
		if len(in.values) != 4 {
			return nil, fmt.Errorf("%w: expected pattern with 4 values; got %d", ErrInvalidFormat, len(in.values))
		}
		p = types.NewPattern(in.values[0], in.values[1], in.values[2], in.values[3])
	case patternFile:
		var err error
		if p, err = readFile(in.path, canestra.ReadPattern); err != nil {
			return nil, err
		}
	}

	t := p.Tuple()
	if !types.XYZ(t[0], t[1], 0).IsFinite() || !types.XYZ(t[2], t[3], 0).IsFinite() {
		return nil, fmt.Errorf("%w: pattern %v has non finite bounds", ErrInvalidFormat, t)
	}
	return &p, nil
}
