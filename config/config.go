// Package config loads caribu run configurations from YAML, TOML or JSON
// files and turns them into scene, run and kernel options.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/christian34/caribu/caribu"
	"github.com/christian34/caribu/kernel/raycast"
	"github.com/christian34/caribu/kernel/shell"
	"github.com/christian34/caribu/scene"
	"github.com/christian34/caribu/types"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("config: unsupported configuration format")
	ErrInvalidConfig     = errors.New("config: invalid configuration")
)

// A Decoder decodes a configuration document.
type Decoder interface {
	Decode(v any) error
}

// DecoderFunc creates a Decoder reading from r.
type DecoderFunc func(r io.Reader) Decoder

// Wrap a typed decoder constructor into a DecoderFunc.
func NewDecoderFunc[T Decoder](f func(r io.Reader) T) DecoderFunc {
	return func(r io.Reader) Decoder { return f(r) }
}

var decoders = map[string]DecoderFunc{
	".yaml": NewDecoderFunc(yaml.NewDecoder),
	".yml":  NewDecoderFunc(yaml.NewDecoder),
	".toml": NewDecoderFunc(toml.NewDecoder),
	".json": NewDecoderFunc(json.NewDecoder),
}

// Get the decoder registered for a file extension.
func DecoderFor(ext string) (DecoderFunc, error) {
	f, found := decoders[strings.ToLower(ext)]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// A light source: energy (per m² of horizontal surface) and direction.
type Light struct {
	Energy    float64   `yaml:"energy" toml:"energy" json:"energy"`
	Direction []float64 `yaml:"direction" toml:"direction" json:"direction"`
}

// Run settings. Unset values keep the caribu defaults.
type Run struct {
	Direct         *bool    `yaml:"direct" toml:"direct" json:"direct"`
	Infinite       bool     `yaml:"infinite" toml:"infinite" json:"infinite"`
	DSphere        *float64 `yaml:"d_sphere" toml:"d_sphere" json:"d_sphere"`
	Layers         *int     `yaml:"layers" toml:"layers" json:"layers"`
	Height         *float64 `yaml:"height" toml:"height" json:"height"`
	ScreenSize     int      `yaml:"screen_size" toml:"screen_size" json:"screen_size"`
	DiscResolution int      `yaml:"disc_resolution" toml:"disc_resolution" json:"disc_resolution"`
	SplitFace      bool     `yaml:"split_face" toml:"split_face" json:"split_face"`
	Simplify       bool     `yaml:"simplify" toml:"simplify" json:"simplify"`
}

// Kernel settings.
type Kernel struct {
	Workers         int    `yaml:"workers" toml:"workers" json:"workers"`
	Subdivisions    int    `yaml:"subdivisions" toml:"subdivisions" json:"subdivisions"`
	Tiles           int    `yaml:"tiles" toml:"tiles" json:"tiles"`
	PeriodiseBinary string `yaml:"periodise_binary" toml:"periodise_binary" json:"periodise_binary"`
	ScratchDir      string `yaml:"scratch_dir" toml:"scratch_dir" json:"scratch_dir"`
	KeepFiles       bool   `yaml:"keep_files" toml:"keep_files" json:"keep_files"`
}

// Config describes a caribu run. File paths are relative to the
// configuration file and may start with ~.
type Config struct {
	Scene     string `yaml:"scene" toml:"scene" json:"scene"`
	SceneUnit string `yaml:"unit" toml:"unit" json:"unit"`

	Lights    []Light `yaml:"lights" toml:"lights" json:"lights"`
	LightFile string  `yaml:"light_file" toml:"light_file" json:"light_file"`

	Pattern     []float64 `yaml:"pattern" toml:"pattern" json:"pattern"`
	PatternFile string    `yaml:"pattern_file" toml:"pattern_file" json:"pattern_file"`

	// Optical properties per band: (rho), (rho, tau) or
	// (rho_sup, tau_sup, rho_inf, tau_inf).
	Opt      map[string][]float64 `yaml:"opt" toml:"opt" json:"opt"`
	OptFiles []string             `yaml:"opt_files" toml:"opt_files" json:"opt_files"`

	SoilReflectance map[string]float64 `yaml:"soil_reflectance" toml:"soil_reflectance" json:"soil_reflectance"`
	SoilMesh        *int               `yaml:"soil_mesh" toml:"soil_mesh" json:"soil_mesh"`
	ZSoil           *float64           `yaml:"z_soil" toml:"z_soil" json:"z_soil"`

	// Logger verbosity (debug, info, notice, warning, error).
	LogLevel string `yaml:"log_level" toml:"log_level" json:"log_level"`

	Run    Run    `yaml:"run" toml:"run" json:"run"`
	Kernel Kernel `yaml:"kernel" toml:"kernel" json:"kernel"`

	// Directory used to resolve relative paths.
	dir string
}

// Load a configuration file. The format is selected by the file extension.
func Load(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	f, err := DecoderFor(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	cfg, err := Read(fp, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, path, err.Error())
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Decode a configuration document. Relative paths are resolved against the
// working directory.
func Read(r io.Reader, f DecoderFunc) (*Config, error) {
	cfg := &Config{}
	if err := f(r).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve a path from the configuration.
func (c *Config) path(p string) (string, error) {
	p, err := homedir.Expand(p)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(p) || c.dir == "" {
		return p, nil
	}
	return filepath.Join(c.dir, p), nil
}

// Build the scene inputs and kernels described by the configuration. ctx
// bounds the external processes spawned by the periodisation kernel.
func (c *Config) Options(ctx context.Context) (caribu.Options, error) {
	opts := caribu.Options{
		SoilReflectance: c.SoilReflectance,
		SoilMesh:        c.SoilMesh,
		ZSoil:           c.ZSoil,
		SceneUnit:       c.SceneUnit,
		Kernel: raycast.New(raycast.Options{
			Subdivisions: c.Kernel.Subdivisions,
			Workers:      c.Kernel.Workers,
			Tiles:        c.Kernel.Tiles,
		}),
	}

	periodiser := shell.Options{Binary: c.Kernel.PeriodiseBinary, KeepFiles: c.Kernel.KeepFiles}
	if c.Kernel.ScratchDir != "" {
		dir, err := c.path(c.Kernel.ScratchDir)
		if err != nil {
			return opts, err
		}
		periodiser.ScratchDir = dir
	}
	opts.Periodiser = shell.NewPeriodiser(ctx, periodiser)

	if err := c.sceneInput(&opts); err != nil {
		return opts, err
	}
	if err := c.lightInput(&opts); err != nil {
		return opts, err
	}
	if err := c.patternInput(&opts); err != nil {
		return opts, err
	}
	if err := c.optInput(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

func (c *Config) sceneInput(opts *caribu.Options) error {
	if c.Scene == "" {
		return nil
	}
	path, err := c.path(c.Scene)
	if err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".can":
		opts.Scene = scene.FromCanFile(path)
	case ".obj":
		opts.Scene = scene.FromWavefront(path)
	default:
		return fmt.Errorf("%w: unsupported scene file extension %q", ErrInvalidConfig, ext)
	}
	return nil
}

func (c *Config) lightInput(opts *caribu.Options) error {
	switch {
	case c.LightFile != "" && len(c.Lights) != 0:
		return fmt.Errorf("%w: lights and light_file are mutually exclusive", ErrInvalidConfig)
	case c.LightFile != "":
		path, err := c.path(c.LightFile)
		if err != nil {
			return err
		}
		opts.Light = scene.LightFile(path)
	case len(c.Lights) != 0:
		lights := make([]types.Light, len(c.Lights))
		for idx, l := range c.Lights {
			if len(l.Direction) != 3 {
				return fmt.Errorf("%w: light %d: expected 3 direction components; got %d", ErrInvalidConfig, idx, len(l.Direction))
			}
			lights[idx] = types.Light{Energy: l.Energy, Direction: types.XYZ(l.Direction[0], l.Direction[1], l.Direction[2])}
		}
		opts.Light = scene.Lights(lights...)
	}
	return nil
}

func (c *Config) patternInput(opts *caribu.Options) error {
	switch {
	case c.PatternFile != "" && len(c.Pattern) != 0:
		return fmt.Errorf("%w: pattern and pattern_file are mutually exclusive", ErrInvalidConfig)
	case c.PatternFile != "":
		path, err := c.path(c.PatternFile)
		if err != nil {
			return err
		}
		opts.Pattern = scene.PatternFile(path)
	case len(c.Pattern) != 0:
		opts.Pattern = scene.PatternValues(c.Pattern...)
	}
	return nil
}

func (c *Config) optInput(opts *caribu.Options) error {
	switch {
	case len(c.OptFiles) != 0 && len(c.Opt) != 0:
		return fmt.Errorf("%w: opt and opt_files are mutually exclusive", ErrInvalidConfig)
	case len(c.OptFiles) != 0:
		paths := make([]string, len(c.OptFiles))
		for idx, p := range c.OptFiles {
			var err error
			if paths[idx], err = c.path(p); err != nil {
				return err
			}
		}
		opts.Opt = scene.OptFiles(paths...)
	case len(c.Opt) != 0:
		bands := make(map[string]types.Material, len(c.Opt))
		for band, values := range c.Opt {
			bands[band] = types.Material(values)
		}
		opts.Opt = scene.OptBands(bands)
	}
	return nil
}

// Get the run options. Unset values keep the caribu defaults.
func (c *Config) RunOptions() caribu.RunOptions {
	opts := caribu.DefaultRunOptions()
	if c.Run.Direct != nil {
		opts.Direct = *c.Run.Direct
	}
	opts.Infinite = c.Run.Infinite
	if c.Run.DSphere != nil {
		opts.DSphere = *c.Run.DSphere
	}
	if c.Run.Layers != nil {
		opts.Layers = *c.Run.Layers
	}
	opts.Height = c.Run.Height
	if c.Run.ScreenSize > 0 {
		opts.ScreenSize = c.Run.ScreenSize
	}
	if c.Run.DiscResolution > 0 {
		opts.DiscResolution = c.Run.DiscResolution
	}
	opts.SplitFace = c.Run.SplitFace
	opts.Simplify = c.Run.Simplify
	return opts
}

// Get the form factor options. The sphere diameter is only set for infinite
// canopies.
func (c *Config) FormFactorOptions() caribu.FormFactorOptions {
	opts := caribu.DefaultFormFactorOptions()
	if c.Run.Infinite {
		d := caribu.DefaultRunOptions().DSphere
		if c.Run.DSphere != nil {
			d = *c.Run.DSphere
		}
		opts.DSphere = &d
	}
	if c.Run.ScreenSize > 0 {
		opts.ScreenSize = c.Run.ScreenSize
	}
	if c.Run.DiscResolution > 0 {
		opts.DiscResolution = c.Run.DiscResolution
	}
	return opts
}
