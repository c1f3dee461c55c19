// Package config loads render settings from YAML files.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-photon-raytracer/pkg/accel"
	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/loaders"
	"github.com/df07/go-photon-raytracer/pkg/log"
	"github.com/df07/go-photon-raytracer/pkg/renderer"
	"github.com/df07/go-photon-raytracer/pkg/scene"
)

// AccelConfig selects and tunes the acceleration structure
type AccelConfig struct {
	Kind        string `yaml:"kind"`
	MaxChildren int    `yaml:"max_children"`
	LeafSize    int    `yaml:"leaf_size"`
	Grid        [3]int `yaml:"grid"`
}

// PhotonsConfig controls the photon pre-pass
type PhotonsConfig struct {
	Count      int     `yaml:"count"`
	MaxBounces int     `yaml:"max_bounces"`
	Radius     float64 `yaml:"radius"`
	Nearest    int     `yaml:"nearest"` // Photons per estimate in nearest mode
	Mode       string  `yaml:"mode"`
}

// RenderConfig is the full set of render settings
type RenderConfig struct {
	Scene                string     `yaml:"scene"`
	Width                int        `yaml:"width"`
	Height               int        `yaml:"height"`
	Jitter               [3]int     `yaml:"jitter"`
	MaxReflectionBounces int        `yaml:"max_reflection_bounces"`
	MaxRefractionBounces int        `yaml:"max_refraction_bounces"`
	Background           [3]float64 `yaml:"background"`
	Seed                 uint64     `yaml:"seed"`
	Workers              int        `yaml:"workers"`
	TileSize             int        `yaml:"tile_size"`
	LogLevel             string     `yaml:"log_level"`

	Accel   AccelConfig          `yaml:"accel"`
	Photons PhotonsConfig        `yaml:"photons"`
	Objects []loaders.ObjectSpec `yaml:"objects"` // Mesh files added to the scene

	// BaseDir resolves relative object paths; Load sets it to the file's directory
	BaseDir string `yaml:"-"`
}

// Default returns the settings used for anything a file leaves out
func Default() RenderConfig {
	return RenderConfig{
		Scene:                "cornell",
		Width:                480,
		Height:               320,
		Jitter:               [3]int{4, 4, 4},
		MaxReflectionBounces: 4,
		MaxRefractionBounces: 2,
		Seed:                 1,
		TileSize:             32,
		LogLevel:             "notice",
		Accel: AccelConfig{
			Kind:        "bvh",
			MaxChildren: 2,
			LeafSize:    2,
			Grid:        [3]int{10, 10, 10},
		},
		Photons: PhotonsConfig{
			Count:      1000000,
			MaxBounces: 1000,
			Radius:     0.003,
			Nearest:    50,
			Mode:       string(renderer.PhotonModeVisualize),
		},
	}
}

// Load reads a YAML file on top of the defaults and validates the result
func Load(path string) (RenderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RenderConfig{}, errors.Wrap(err, "reading render config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return RenderConfig{}, errors.Wrapf(err, "loading %s", path)
	}
	cfg.BaseDir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result
func Parse(data []byte) (RenderConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RenderConfig{}, errors.Wrap(err, "parsing render config")
	}
	if err := cfg.Validate(); err != nil {
		return RenderConfig{}, err
	}
	return cfg, nil
}

// Validate checks every setting
func (c RenderConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("image size must be positive, got %dx%d", c.Width, c.Height)
	}
	for _, n := range c.Jitter {
		if n <= 0 {
			return errors.Errorf("jitter grid must be positive, got %v", c.Jitter)
		}
	}
	if c.MaxReflectionBounces < 0 || c.MaxRefractionBounces < 0 {
		return errors.Errorf("bounce limits must not be negative, got %d/%d", c.MaxReflectionBounces, c.MaxRefractionBounces)
	}
	if c.TileSize <= 0 {
		return errors.Errorf("tile size must be positive, got %d", c.TileSize)
	}
	if c.Workers < 0 {
		return errors.Errorf("worker count must not be negative, got %d", c.Workers)
	}
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return errors.Errorf("unknown log level %q", c.LogLevel)
	}

	kind, err := accel.ParseKind(c.Accel.Kind)
	if err != nil {
		return err
	}
	if err := c.AccelConfig().Validate(kind); err != nil {
		return err
	}

	if _, err := renderer.ParsePhotonMode(c.Photons.Mode); err != nil {
		return err
	}
	if c.Photons.Count < 0 || c.Photons.MaxBounces < 0 {
		return errors.Errorf("photon count and bounces must not be negative, got %d/%d", c.Photons.Count, c.Photons.MaxBounces)
	}
	if c.Photons.Radius <= 0 {
		return errors.Errorf("photon radius must be positive, got %g", c.Photons.Radius)
	}
	if c.Photons.Nearest < 1 {
		return errors.Errorf("nearest photon count must be positive, got %d", c.Photons.Nearest)
	}

	for i, object := range c.Objects {
		if object.Mesh == "" {
			return errors.Errorf("object %d (%q) has no mesh file", i, object.Name)
		}
	}
	return nil
}

// AccelKind returns the parsed acceleration structure kind
func (c RenderConfig) AccelKind() (accel.Kind, error) {
	return accel.ParseKind(c.Accel.Kind)
}

// AccelConfig returns the acceleration structure settings
func (c RenderConfig) AccelConfig() accel.Config {
	return accel.Config{
		BVH:  accel.BVHConfig{MaxChildren: c.Accel.MaxChildren, LeafSize: c.Accel.LeafSize},
		Grid: accel.GridConfig{Resolution: c.Accel.Grid},
	}
}

// BackgroundColor returns the miss color
func (c RenderConfig) BackgroundColor() core.Vec3 {
	return core.NewVec3(c.Background[0], c.Background[1], c.Background[2])
}

// RendererConfig returns the backward renderer settings
func (c RenderConfig) RendererConfig() renderer.Config {
	return renderer.Config{
		Width:                c.Width,
		Height:               c.Height,
		Jitter:               c.Jitter,
		MaxReflectionBounces: c.MaxReflectionBounces,
		MaxRefractionBounces: c.MaxRefractionBounces,
		Seed:                 c.Seed,
		Workers:              c.Workers,
		TileSize:             c.TileSize,
	}
}

// PhotonConfig returns the photon pass settings. The photon streams share
// the render seed.
func (c RenderConfig) PhotonConfig() renderer.PhotonConfig {
	return renderer.PhotonConfig{
		Photons:    c.Photons.Count,
		MaxBounces: c.Photons.MaxBounces,
		Radius:     c.Photons.Radius,
		Nearest:    c.Photons.Nearest,
		Mode:       renderer.PhotonMode(c.Photons.Mode),
		Workers:    c.Workers,
		Seed:       c.Seed,
	}
}

// BuildScene loads the configured scene, adds the configured mesh objects and
// builds the acceleration data
func (c RenderConfig) BuildScene() (*scene.Scene, error) {
	s, err := scene.Load(c.Scene)
	if err != nil {
		return nil, err
	}
	s.Background = c.BackgroundColor()

	for _, spec := range c.Objects {
		object, err := loaders.LoadSceneObject(spec, c.BaseDir)
		if err != nil {
			return nil, err
		}
		s.AddSceneObject(object)
	}

	kind, err := c.AccelKind()
	if err != nil {
		return nil, err
	}
	if err := s.GenerateAccelerationData(kind, c.AccelConfig()); err != nil {
		return nil, err
	}
	return s, nil
}
