package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/christian34/caribu/caribu"
	"github.com/christian34/caribu/kernel"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
scene: plants/leaf.can
unit: cm
lights:
  - energy: 1.0
    direction: [0.0, 0.0, -1.0]
  - energy: 2.0
    direction: [1.0, 0.0, -1.0]
pattern: [0.0, 0.0, 200.0, 200.0]
opt:
  par: [0.1, 0.05]
  nir: [0.4, 0.4]
soil_reflectance:
  par: 0.1
  nir: 0.3
soil_mesh: 0
z_soil: -1.0
log_level: warning
run:
  direct: false
  infinite: true
  d_sphere: 0.25
  layers: 4
  split_face: true
kernel:
  workers: 2
  periodise_binary: /opt/caribu/periodise
`

const tomlConfig = `
scene = "plants/leaf.can"
unit = "cm"
pattern = [0.0, 0.0, 200.0, 200.0]
soil_mesh = 0
z_soil = -1.0

[[lights]]
energy = 1.0
direction = [0.0, 0.0, -1.0]

[[lights]]
energy = 2.0
direction = [1.0, 0.0, -1.0]

[opt]
par = [0.1, 0.05]
nir = [0.4, 0.4]

[soil_reflectance]
par = 0.1
nir = 0.3

[run]
direct = false
infinite = true
d_sphere = 0.25
layers = 4
split_face = true

[kernel]
workers = 2
periodise_binary = "/opt/caribu/periodise"
`

const jsonConfig = `{
  "scene": "plants/leaf.can",
  "unit": "cm",
  "lights": [
    {"energy": 1, "direction": [0, 0, -1]},
    {"energy": 2, "direction": [1, 0, -1]}
  ],
  "pattern": [0, 0, 200, 200],
  "opt": {"par": [0.1, 0.05], "nir": [0.4, 0.4]},
  "soil_reflectance": {"par": 0.1, "nir": 0.3},
  "soil_mesh": 0,
  "z_soil": -1,
  "run": {"direct": false, "infinite": true, "d_sphere": 0.25, "layers": 4, "split_face": true},
  "kernel": {"workers": 2, "periodise_binary": "/opt/caribu/periodise"}
}`

const leafCan = "p 1 100000101000 3 0 0 0 100 0 0 0 100 0\np 1 100000101000 3 100 0 0 100 100 0 0 100 0\n"

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plants/leaf.can", leafCan)

	specs := []struct {
		name    string
		content string
	}{
		{"run.yaml", yamlConfig},
		{"run.yml", yamlConfig},
		{"run.toml", tomlConfig},
		{"run.json", jsonConfig},
	}

	for specIndex, spec := range specs {
		cfg, err := Load(writeFile(t, dir, spec.name, spec.content))
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", specIndex, err)
		}

		assert.Equal(t, "plants/leaf.can", cfg.Scene)
		assert.Equal(t, "cm", cfg.SceneUnit)
		require.Len(t, cfg.Lights, 2)
		assert.Equal(t, []float64{1, 0, -1}, cfg.Lights[1].Direction)
		assert.Equal(t, []float64{0, 0, 200, 200}, cfg.Pattern)
		assert.Equal(t, []float64{0.1, 0.05}, cfg.Opt["par"])
		assert.Equal(t, 0.3, cfg.SoilReflectance["nir"])
		require.NotNil(t, cfg.SoilMesh)
		assert.Equal(t, 0, *cfg.SoilMesh)
		assert.Equal(t, 2, cfg.Kernel.Workers)
		assert.Equal(t, "/opt/caribu/periodise", cfg.Kernel.PeriodiseBinary)

		run := cfg.RunOptions()
		assert.False(t, run.Direct)
		assert.True(t, run.Infinite)
		assert.Equal(t, 0.25, run.DSphere)
		assert.Equal(t, 4, run.Layers)
		assert.True(t, run.SplitFace)
		assert.Equal(t, caribu.DefaultRunOptions().ScreenSize, run.ScreenSize)

		ff := cfg.FormFactorOptions()
		require.NotNil(t, ff.DSphere)
		assert.Equal(t, 0.25, *ff.DSphere)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "run.ini", "scene = x"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat; got %v", err)
	}

	_, err = Load(writeFile(t, dir, "broken.json", "{"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig; got %v", err)
	}

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadFromHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	defer func() { homedir.DisableCache = false }()

	writeFile(t, home, "caribu/run.yaml", "scene: ~/caribu/leaf.can\n")
	cfg, err := Load("~/caribu/run.yaml")
	require.NoError(t, err)

	path, err := cfg.path(cfg.Scene)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "caribu", "leaf.can"), path)
}

func TestOptions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plants/leaf.can", leafCan)
	cfg, err := Load(writeFile(t, dir, "run.yaml", yamlConfig))
	require.NoError(t, err)

	opts, err := cfg.Options(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, opts.Kernel)
	assert.NotNil(t, opts.Periodiser)

	s, err := caribu.New(opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"nir", "par"}, s.Bands())
	assert.Len(t, s.Lights(), 2)
	assert.Len(t, s.Soil(), 2)
	rho, _ := s.SoilReflectance("nir")
	assert.Equal(t, 0.3, rho)

	qi, _, einc := s.IncidentEnergy()
	assert.InDelta(t, 3.0, qi, 1e-12)
	require.NotNil(t, einc)
	assert.InDelta(t, 12.0, *einc, 1e-9)

	// Direct finite ray casting of the leaf and the soil below it
	run := caribu.DefaultRunOptions()
	res, err := s.Run(run)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Aggregated["par"][kernel.ResultArea]["100000101000"], 1e-9)
}

func TestOptionsErrors(t *testing.T) {
	specs := []Config{
		{Scene: "leaf.stl"},
		{Lights: []Light{{Energy: 1, Direction: []float64{0, -1}}}},
		{Lights: []Light{{Energy: 1, Direction: []float64{0, 0, -1}}}, LightFile: "sky.light"},
		{Pattern: []float64{0, 0, 1, 1}, PatternFile: "domain.8"},
		{Opt: map[string][]float64{"par": {0.1}}, OptFiles: []string{"par.opt"}},
	}

	for specIndex, spec := range specs {
		if _, err := spec.Options(context.Background()); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("[spec %d] expected ErrInvalidConfig; got %v", specIndex, err)
		}
	}
}
