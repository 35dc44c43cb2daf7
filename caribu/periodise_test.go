package caribu

import (
	"errors"
	"strings"
	"testing"

	"github.com/christian34/caribu/asset/canestra"
	"github.com/christian34/caribu/scene"
	"github.com/christian34/caribu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Echo the geometry back and append extra lines.
type fakePeriodiser struct {
	can, pattern string
	extra        []string
	err          error
}

func (p *fakePeriodiser) Periodise(can, pattern string) (string, error) {
	p.can, p.pattern = can, pattern
	if p.err != nil {
		return "", p.err
	}
	return "# periodised\n\n" + can + strings.Join(p.extra, "\n"), nil
}

func TestRunPeriodise(t *testing.T) {
	per := &fakePeriodiser{
		extra: []string{
			"p 1 000000000000 3 0 0 0 1 0 0 0 1 0",
			"p 1 100000901000 3 0 0 0 1 0 0 0 1 0",
			"p 1 stray 3 0 0 0 1 0 0 0 1 0",
		},
	}
	s, err := New(Options{
		Scene: scene.FromTriangles(map[string][]types.Triangle{
			"stem": {{{0, 0, 0}, {0, 1, 0}, {0, 0, 1}}},
			"leaf": unitSquare(1, 1),
		}),
		Opt: scene.OptPrimitives(scene.MaterialTable{
			"par": {"stem": {0.1}, "leaf": {0.1, 0.05}},
		}),
		Pattern:    scene.PatternBounds(0, 0, 1, 1),
		SoilMesh:   intPtr(0),
		Kernel:     newKernel(),
		Periodiser: per,
	})
	require.NoError(t, err)
	require.NotNil(t, s.Soil())

	out, err := s.RunPeriodise()
	require.NoError(t, err)
	assert.Same(t, s, out)

	// Soil triangles are not sent to the periodiser
	entries, err := canestra.ParseTriangles("sent.can", strings.NewReader(per.can))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "100000101000", entries[0].Label)
	assert.Equal(t, "100000101001", entries[1].Label)
	assert.Equal(t, "200000200000", entries[2].Label)
	assert.Equal(t, canestra.PatternString(types.NewPattern(0, 0, 1, 1)), per.pattern)

	sc := s.Triangles()
	assert.Equal(t, []string{"100000901000", "leaf", "stem", "stray"}, sc.IDs())
	assert.Equal(t, unitSquare(1, 1), sc["leaf"])
	assert.Len(t, sc["stem"], 1)
	assert.Nil(t, s.Soil())

	mats := s.Materials()
	assert.Equal(t, types.Material{0.1, 0.05}, mats["par"]["leaf"])
	assert.Equal(t, types.Material{0.1}, mats["par"]["stem"])
	assert.Equal(t, types.Material{0.06, 0.07}, mats["par"]["stray"])

	// The periodised scene can be run again
	res, err := s.Run(DefaultRunOptions())
	require.NoError(t, err)
	assert.Len(t, res.Aggregated["par"]["Ei"], 4)
	assert.Nil(t, res.SoilAggregated)
}

func TestRunPeriodiseErrors(t *testing.T) {
	leaf := scene.FromTriangles(map[string][]types.Triangle{"leaf": unitSquare(1, 0)})

	s, err := New(Options{Scene: leaf, Periodiser: &fakePeriodiser{}})
	require.NoError(t, err)
	if _, err = s.RunPeriodise(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected periodise without a pattern to fail with ErrConfiguration; got %v", err)
	}

	s, err = New(Options{Scene: leaf, Pattern: scene.PatternBounds(0, 0, 1, 1)})
	require.NoError(t, err)
	if _, err = s.RunPeriodise(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected periodise without a periodiser to fail with ErrConfiguration; got %v", err)
	}

	per := &fakePeriodiser{err: errors.New("exit status 1")}
	s, err = New(Options{Scene: leaf, Pattern: scene.PatternBounds(0, 0, 1, 1), Periodiser: per})
	require.NoError(t, err)
	_, err = s.RunPeriodise()
	assert.ErrorContains(t, err, "exit status 1")

	// The scene is left untouched on failure
	assert.Equal(t, []string{"leaf"}, s.Triangles().IDs())

	per.err = nil
	per.extra = []string{"p 1 100000101000 3 0 0"}
	_, err = s.RunPeriodise()
	assert.True(t, errors.Is(err, ErrInvalidFormat))
}
