package kernel

import (
	"errors"
	"testing"

	"github.com/christian34/caribu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSolver struct {
	calls   []string
	domains []*types.Pattern
	fail    bool
}

func (s *recordingSolver) record(name string, req *Request) (*Output, error) {
	s.calls = append(s.calls, name)
	s.domains = append(s.domains, req.Domain)
	if s.fail {
		return nil, errors.New("boom")
	}
	n := len(req.Triangles)
	out := &Output{Eabs: make([]float64, n), Ei: make([]float64, n), Area: make([]float64, n)}
	for i := range req.Materials {
		out.Eabs[i] = req.Materials[i][0]
	}
	return out, nil
}

func (s *recordingSolver) Raycasting(req *Request) (*Output, error) {
	return s.record("raycasting", req)
}

func (s *recordingSolver) Radiosity(req *Request) (*Output, error) {
	return s.record("radiosity", req)
}

func (s *recordingSolver) MixedRadiosity(req *Request) (*Output, error) {
	return s.record("mixed", req)
}

func TestSelectMode(t *testing.T) {
	type spec struct {
		direct, infinite bool
		exp              Mode
	}
	specs := []spec{
		{true, false, Raycasting},
		{true, true, PeriodicRaycasting},
		{false, false, Radiosity},
		{false, true, MixedRadiosity},
	}

	for idx, s := range specs {
		if got := SelectMode(s.direct, s.infinite); got != s.exp {
			t.Fatalf("[spec %d] expected mode %s; got %s", idx, s.exp, got)
		}
	}
}

func TestDispatch(t *testing.T) {
	p := types.NewPattern(0, 0, 1, 1)
	tri := types.Triangle{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	req := &Request{
		Triangles: []types.Triangle{tri},
		Materials: []types.Material{{0.1}},
		Domain:    &p,
	}

	type spec struct {
		mode      Mode
		expCall   string
		expDomain bool
	}
	specs := []spec{
		{Raycasting, "raycasting", false},
		{PeriodicRaycasting, "raycasting", true},
		{Radiosity, "radiosity", true},
		{MixedRadiosity, "mixed", true},
	}

	for idx, s := range specs {
		solver := &recordingSolver{}
		if _, err := Dispatch(solver, s.mode, req); err != nil {
			t.Fatalf("[spec %d] unexpected error %v", idx, err)
		}
		if len(solver.calls) != 1 || solver.calls[0] != s.expCall {
			t.Fatalf("[spec %d] expected call to %s; got %v", idx, s.expCall, solver.calls)
		}
		if (solver.domains[0] != nil) != s.expDomain {
			t.Fatalf("[spec %d] expected domain presence to be %t", idx, s.expDomain)
		}
	}

	// The caller's request is not modified
	assert.NotNil(t, req.Domain)

	_, err := Dispatch(&recordingSolver{}, MixedRadiosity, &Request{Triangles: req.Triangles, Materials: req.Materials})
	assert.Error(t, err)

	_, err = Dispatch(&recordingSolver{}, Raycasting, &Request{Triangles: req.Triangles})
	assert.ErrorIs(t, err, ErrMisaligned)

	_, err = Dispatch(&recordingSolver{}, Mode(42), req)
	assert.ErrorIs(t, err, ErrUnsupportedMode)
}

func TestVectorize(t *testing.T) {
	tri := types.Triangle{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	req := &MultiBandRequest{
		Request: Request{Triangles: []types.Triangle{tri, tri}},
		Bands:   []string{"NIR", "PAR"},
		BandMaterials: map[string][]types.Material{
			"NIR": {{0.4}, {0.5}},
			"PAR": {{0.1}, {0.2}},
		},
		BandReflectance: map[string]float64{"NIR": 0.3, "PAR": 0.1},
	}

	parBand := req.Band("PAR")
	assert.Equal(t, 0.1, parBand.SoilReflectance)
	assert.Equal(t, []types.Material{{0.1}, {0.2}}, parBand.Materials)

	solver := &recordingSolver{}
	out, err := DispatchBands(Vectorize(solver), Radiosity, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"radiosity", "radiosity"}, solver.calls)
	assert.Equal(t, []float64{0.4, 0.5}, out["NIR"].Eabs)
	assert.Equal(t, []float64{0.1, 0.2}, out["PAR"].Eabs)

	_, err = DispatchBands(Vectorize(&recordingSolver{fail: true}), Raycasting, req)
	assert.Error(t, err)

	req.BandMaterials["PAR"] = req.BandMaterials["PAR"][:1]
	_, err = DispatchBands(Vectorize(solver), Raycasting, req)
	assert.ErrorIs(t, err, ErrMisaligned)
}

func TestOutputAlignment(t *testing.T) {
	out := &Output{
		Eabs: []float64{1, 2},
		Ei:   []float64{1, 2},
		Area: []float64{1},
	}

	require.NoError(t, out.CheckAligned(2, ResultEabs, ResultEi))
	assert.ErrorIs(t, out.CheckAligned(2, ResultArea), ErrMisaligned)
	assert.ErrorIs(t, out.CheckAligned(2, ResultEiSup), ErrMisaligned)

	clone := out.Clone()
	clone.Eabs[0] = 42
	assert.Equal(t, 1.0, out.Eabs[0])
	assert.Nil(t, clone.EiSup)

	if _, found := out.Values("unknown"); found {
		t.Fatal("expected unknown result name lookup to fail")
	}
}
