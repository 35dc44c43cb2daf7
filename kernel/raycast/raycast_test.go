package raycast

import (
	"testing"

	"github.com/christian34/caribu/kernel"
	"github.com/christian34/caribu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, x1, y1, z float64) []types.Triangle {
	return []types.Triangle{
		{{x0, y0, z}, {x1, y0, z}, {x0, y1, z}},
		{{x1, y0, z}, {x1, y1, z}, {x0, y1, z}},
	}
}

func materials(n int, mat types.Material) []types.Material {
	out := make([]types.Material, n)
	for i := range out {
		out[i] = mat
	}
	return out
}

var vertical = types.Light{Energy: 1, Direction: types.Vec3{0, 0, -1}}

func TestSamplePoints(t *testing.T) {
	for n := 1; n <= 6; n++ {
		pts := samplePoints(n)
		if len(pts) != n*n {
			t.Fatalf("[n %d] expected %d sample points; got %d", n, n*n, len(pts))
		}
		for _, p := range pts {
			if p[0] <= 0 || p[1] <= 0 || p[0]+p[1] >= 1 {
				t.Fatalf("[n %d] sample point %v is not inside the triangle", n, p)
			}
		}
	}
}

func TestFlatSquare(t *testing.T) {
	k := New(Options{Workers: 2})
	triangles := square(0, 0, 1, 1, 0)
	out, err := k.Raycasting(&kernel.Request{
		Triangles: triangles,
		Materials: materials(2, types.Material{0.06, 0.07}),
		Lights:    []types.Light{vertical},
	})
	require.NoError(t, err)

	for idx := range triangles {
		assert.InDelta(t, 0.5, out.Area[idx], 1e-12)
		assert.InDelta(t, 1.0, out.Ei[idx], 1e-12)
		assert.InDelta(t, 1.0, out.EiSup[idx], 1e-12)
		assert.InDelta(t, 0.0, out.EiInf[idx], 1e-12)
		assert.InDelta(t, 0.87, out.Eabs[idx], 1e-12)
	}
}

func TestObliqueAndInvertedFaces(t *testing.T) {
	k := New(Options{})
	up := types.Triangle{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	down := types.Triangle{{10, 0, 5}, {10, 1, 5}, {11, 0, 5}}

	out, err := k.Raycasting(&kernel.Request{
		Triangles: []types.Triangle{up, down},
		Materials: []types.Material{{0.1}, {0.1, 0.1, 0.3, 0.2}},
		Lights:    []types.Light{{Energy: 2, Direction: types.Vec3{1, 0, -1}}},
	})
	require.NoError(t, err)

	// Horizontal surfaces receive the horizontal irradiance whatever the
	// light elevation
	assert.InDelta(t, 2.0, out.EiSup[0], 1e-9)
	assert.InDelta(t, 1.8, out.Eabs[0], 1e-9)

	// The upper face of an inverted triangle looks down
	assert.InDelta(t, 0.0, out.EiSup[1], 1e-9)
	assert.InDelta(t, 2.0, out.EiInf[1], 1e-9)
	assert.InDelta(t, 1.0, out.Eabs[1], 1e-9)
}

func TestOcclusion(t *testing.T) {
	k := New(Options{Subdivisions: 4})
	var triangles []types.Triangle
	triangles = append(triangles, square(0, 0, 1, 1, 0)...) // shaded
	triangles = append(triangles, square(1, 0, 2, 1, 0)...) // lit
	triangles = append(triangles, square(0, 0, 1, 1, 1)...) // occluder

	out, err := k.Raycasting(&kernel.Request{
		Triangles: triangles,
		Materials: materials(len(triangles), types.Material{0.1}),
		Lights:    []types.Light{vertical},
	})
	require.NoError(t, err)

	expEi := []float64{0, 0, 1, 1, 1, 1}
	for idx, exp := range expEi {
		if !assert.InDelta(t, exp, out.Ei[idx], 1e-12) {
			t.Fatalf("unexpected Ei for triangle %d", idx)
		}
	}
}

func TestPeriodicReplication(t *testing.T) {
	// A receiver with an occluder right above it. The light is oblique so
	// that, in a finite scene, the shadow falls outside the receiver; in an
	// infinite canopy the neighbouring occluder shades it.
	var triangles []types.Triangle
	triangles = append(triangles, square(0, 0, 0.5, 1, 0)...)
	triangles = append(triangles, square(0, 0, 0.5, 1, 1)...)
	lights := []types.Light{{Energy: 1, Direction: types.Vec3{-1, 0, -1}}}
	domain := types.NewPattern(0, 0, 1, 1)

	req := &kernel.Request{
		Triangles: triangles,
		Materials: materials(len(triangles), types.Material{0.1}),
		Lights:    lights,
	}

	k := New(Options{Workers: 3})
	finite, err := k.Raycasting(req)
	require.NoError(t, err)
	for idx := 0; idx < 4; idx++ {
		assert.InDelta(t, 1.0, finite.Ei[idx], 1e-9, "finite triangle %d", idx)
	}

	// Negative tile counts fall back to the derived count
	req.Domain = &domain
	for specIndex, tiles := range []int{0, -1, 2} {
		periodic, err := New(Options{Workers: 3, Tiles: tiles}).Raycasting(req)
		require.NoError(t, err)

		for idx := 0; idx < 2; idx++ {
			if !assert.InDelta(t, 0.0, periodic.Ei[idx], 1e-9) {
				t.Fatalf("[spec %d] expected periodic receiver %d to be shaded", specIndex, idx)
			}
		}
		for idx := 2; idx < 4; idx++ {
			assert.InDelta(t, 1.0, periodic.Ei[idx], 1e-9)
		}
	}
}

func TestInfiniteFlatCanopy(t *testing.T) {
	// Identical stacked layers covering the whole domain: under an oblique
	// light the lower layer is fully shaded in periodic mode.
	var triangles []types.Triangle
	triangles = append(triangles, square(0, 0, 1, 1, 0)...)
	triangles = append(triangles, square(0, 0, 1, 1, 0.5)...)
	domain := types.NewPattern(0, 0, 1, 1)

	out, err := New(Options{}).Raycasting(&kernel.Request{
		Triangles: triangles,
		Materials: materials(len(triangles), types.Material{0.1}),
		Lights:    []types.Light{{Energy: 1, Direction: types.Vec3{0.3, 0.4, -1}}},
		Domain:    &domain,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, out.Ei[0], 1e-9)
	assert.InDelta(t, 0.0, out.Ei[1], 1e-9)
	assert.InDelta(t, 1.0, out.Ei[2], 1e-9)
	assert.InDelta(t, 1.0, out.Ei[3], 1e-9)
}

func TestUnsupportedRequests(t *testing.T) {
	k := New(Options{})
	req := &kernel.Request{
		Triangles: square(0, 0, 1, 1, 0),
		Materials: materials(2, types.Material{0.1}),
		Lights:    []types.Light{vertical},
	}

	_, err := k.Radiosity(req)
	assert.ErrorIs(t, err, kernel.ErrUnsupportedMode)
	_, err = k.MixedRadiosity(req)
	assert.ErrorIs(t, err, kernel.ErrUnsupportedMode)

	req.FormFactor = true
	_, err = k.Raycasting(req)
	assert.ErrorIs(t, err, kernel.ErrUnsupportedMode)

	req.FormFactor = false
	req.Materials = req.Materials[:1]
	_, err = k.Raycasting(req)
	assert.ErrorIs(t, err, kernel.ErrMisaligned)
}

func TestEmptyRequest(t *testing.T) {
	out, err := New(Options{}).Raycasting(&kernel.Request{Lights: []types.Light{vertical}})
	require.NoError(t, err)
	assert.Empty(t, out.Ei)
}
