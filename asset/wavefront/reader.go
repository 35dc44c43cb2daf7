// Package wavefront loads plant geometry from Wavefront .obj files. Each
// object or group becomes a primitive whose id is the object name; faces
// defined before any "o"/"g" statement are collected under the default id.
package wavefront

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/christian34/caribu/asset"
	"github.com/christian34/caribu/log"
	"github.com/christian34/caribu/types"
)

// The id assigned to faces that do not belong to a named object.
const DefaultObjectName = "default"

// A triangulated object parsed from an obj file.
type Object struct {
	Name      string
	Triangles []types.Triangle
}

type objReader struct {
	logger log.Logger

	// Parsed objects in order of definition.
	objects []*Object

	vertexList []types.Vec3

	// An error stack that provides additional error information when
	// obj files include other files.
	errStack []string
}

func newObjReader() *objReader {
	return &objReader{
		logger:     log.New("wavefront reader"),
		objects:    make([]*Object, 0),
		vertexList: make([]types.Vec3, 0),
		errStack:   make([]string, 0),
	}
}

// Read all objects defined by an obj resource. Objects sharing a name are
// merged; objects without faces are dropped.
func Read(res *asset.Resource) ([]*Object, error) {
	r := newObjReader()
	r.logger.Infof(`parsing geometry from "%s"`, res.Path())
	start := time.Now()

	if err := r.parse(res); err != nil {
		return nil, err
	}

	merged := make([]*Object, 0, len(r.objects))
	byName := make(map[string]*Object)
	for _, obj := range r.objects {
		if existing, found := byName[obj.Name]; found {
			existing.Triangles = append(existing.Triangles, obj.Triangles...)
			continue
		}
		byName[obj.Name] = obj
		merged = append(merged, obj)
	}

	r.logger.Infof("parsed %d objects in %d ms", len(merged), time.Since(start).Nanoseconds()/1e6)
	return merged, nil
}

// Read an obj resource into an id -> triangles mapping.
func ReadScene(res *asset.Resource) (map[string][]types.Triangle, error) {
	objects, err := Read(res)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]types.Triangle, len(objects))
	for _, obj := range objects {
		out[obj.Name] = obj.Triangles
	}
	return out, nil
}

func (r *objReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return fmt.Errorf("%w: %s", ErrSyntax, errMsg)
}

func (r *objReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

func (r *objReader) popFrame() {
	r.errStack = r.errStack[1:]
}

func (r *objReader) currentObject() *Object {
	if len(r.objects) == 0 {
		r.objects = append(r.objects, &Object{Name: DefaultObjectName})
	}
	return r.objects[len(r.objects)-1]
}

func (r *objReader) parse(res *asset.Resource) error {
	lineNum := 0

	// Included files use 1-based indices relative to their own vertex list.
	relVertexOffset := len(r.vertexList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "call"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [call]", res.Path(), lineNum))
			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}
			r.dropEmptyObject()
			r.objects = append(r.objects, &Object{Name: lineTokens[1]})
		case "f":
			triangles, err := r.parseFace(lineTokens, relVertexOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			obj := r.currentObject()
			obj.Triangles = append(obj.Triangles, triangles...)
		case "vn", "vt", "vp", "s", "usemtl", "mtllib", "l", "p":
			// Shading and texture data do not affect interception.
		default:
			r.logger.Debugf("[%s: %d] ignoring unsupported statement %q", res.Path(), lineNum, lineTokens[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	r.dropEmptyObject()
	return nil
}

// Drop the last parsed object if it contains no faces.
func (r *objReader) dropEmptyObject() {
	last := len(r.objects) - 1
	if last >= 0 && len(r.objects[last].Triangles) == 0 {
		r.logger.Warningf(`dropping object "%s" as it contains no faces`, r.objects[last].Name)
		r.objects = r.objects[:last]
	}
}

// Parse a face definition. Each face argument is comprised of 1, 2 or 3
// indices separated by a slash character:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Only the vertex index is used. Polygons with more than 3 vertices are
// triangulated as a fan around their first vertex.
func (r *objReader) parseFace(lineTokens []string, relVertexOffset int) ([]types.Triangle, error) {
	if len(lineTokens) < 4 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	vertices := make([]types.Vec3, len(lineTokens)-1)
	expIndices := 0
	for arg := 0; arg < len(vertices); arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return nil, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]
	}

	triangles := make([]types.Triangle, 0, len(vertices)-2)
	for i := 1; i < len(vertices)-1; i++ {
		triangles = append(triangles, types.Triangle{vertices[0], vertices[i], vertices[i+1]})
	}
	return triangles, nil
}

// Given a face vertex index calculate the offset into the vertex list.
// Negative indices reference elements from the end of the list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 64)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = coord
	}
	return v, nil
}
