package units

import (
	"errors"
	"testing"

	"github.com/christian34/caribu/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFactors(t *testing.T) {
	expFactors := map[string]float64{
		"mm": 0.001, "cm": 0.01, "dm": 0.1, "m": 1, "dam": 10, "hm": 100, "km": 1000,
	}
	for name, exp := range expFactors {
		f, err := Default().Factor(name)
		require.NoError(t, err)
		assert.Equal(t, exp, f, name)
	}
	assert.Equal(t, []string{"cm", "dam", "dm", "hm", "km", "m", "mm"}, Default().Names())
}

func TestUnknownUnit(t *testing.T) {
	_, err := Default().Converter("inch")
	if !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit; got %v", err)
	}
}

func TestDensityRoundTrip(t *testing.T) {
	for _, name := range Default().Names() {
		c, err := Default().Converter(name)
		require.NoError(t, err)

		for _, v := range []float64{0, 1, 0.37, 1234.5} {
			scaled := c.LightEnergy(v)
			assert.InDelta(t, v, c.Density(scaled), 1e-9*(1+v), "unit %s value %v", name, v)
		}
	}
}

func TestConverter(t *testing.T) {
	c, err := Default().Converter("cm")
	require.NoError(t, err)

	assert.InDelta(t, 0.5, c.Area(5000), 1e-12)
	assert.InDelta(t, 1, c.Density(1e-4), 1e-12)
	assert.InDelta(t, 50, c.Length(0.5), 1e-9)
	assert.False(t, c.IsIdentity())

	m, err := Default().Converter(Meter)
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.LightEnergy(3))
}

func TestCustomSystem(t *testing.T) {
	_, err := NewSystem(map[string]float64{"ft": 0.3048, "bad": 0})
	if !errors.Is(err, ErrInvalidFactor) {
		t.Fatalf("expected ErrInvalidFactor; got %v", err)
	}

	sys, err := NewSystem(map[string]float64{"ft": 0.3048})
	require.NoError(t, err)
	f, err := sys.Factor("ft")
	require.NoError(t, err)
	assert.Equal(t, 0.3048, f)
}

func TestConvertOutput(t *testing.T) {
	c, err := Default().Converter("cm")
	require.NoError(t, err)

	out := &kernel.Output{
		Eabs: []float64{0.5e-4},
		Ei:   []float64{1e-4},
		Area: []float64{10000},
	}
	conv := c.Convert(out)
	assert.InDelta(t, 0.5, conv.Eabs[0], 1e-12)
	assert.InDelta(t, 1, conv.Ei[0], 1e-12)
	assert.InDelta(t, 1, conv.Area[0], 1e-12)
	assert.Nil(t, conv.EiSup)

	// The kernel output is left untouched
	assert.Equal(t, 1e-4, out.Ei[0])
	assert.InDelta(t, 1, c.DomainArea(1e4), 1e-12)
}
