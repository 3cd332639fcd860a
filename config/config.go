// Package config provides configuration loading and access for the mesh
// generation pipeline: tunables not fixed by the pipeline's own design
// as hard constants (the brick/dense threshold, the surface thickness
// epsilon, numerical tolerances, spline sampling density) live here.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable parameter of the mesh pipeline.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Numerics NumericsConfig `yaml:"numerics"`
	Profile  ProfileConfig  `yaml:"profile"`
	Dirty    DirtyConfig    `yaml:"dirty"`
	Generate GenerateConfig `yaml:"generate"`
}

// StorageConfig controls the dense/brick storage dispatch.
type StorageConfig struct {
	// BrickResolutionThreshold is the resolution at or above which
	// generate_mesh switches from a dense grid to the sparse brick map.
	BrickResolutionThreshold uint32 `yaml:"brick_resolution_threshold"`
	// SurfaceThickness is the margin (world units) added to a brick's
	// geometric half-diagonal when deciding whether it is surface-adjacent.
	SurfaceThickness float64 `yaml:"surface_thickness"`
}

// NumericsConfig controls gradient and QEF/Newton numerical tolerances.
type NumericsConfig struct {
	GradientEpsilon     float64 `yaml:"gradient_epsilon"`
	NewtonMaxIterations int     `yaml:"newton_max_iterations"`
	NewtonTolerance     float64 `yaml:"newton_tolerance"`
}

// ProfileConfig controls ProfiledCapsule ring sampling.
type ProfileConfig struct {
	// AngleSamples is the number of angular samples taken around a ring
	// when get_profile_control_points flattens the analytical spline
	// back into discrete points for a host to render or edit.
	AngleSamples int `yaml:"angle_samples"`
}

// DirtyConfig controls the thresholds used to detect a moved joint or a
// changed mould between two update calls.
type DirtyConfig struct {
	Epsilon float64 `yaml:"epsilon"`
}

// GenerateConfig holds generate_mesh's own defaults, used when a caller
// does not override resolution/fast_mode.
type GenerateConfig struct {
	DefaultResolution uint32 `yaml:"default_resolution"`
	DefaultFastMode   bool   `yaml:"default_fast_mode"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Set replaces the global configuration directly, without touching disk.
// Used by cmd/brickcalibrate to sweep candidate configs between
// evaluations without round-tripping through YAML each time.
func Set(cfg *Config) {
	global = cfg
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}

// WriteYAML marshals the config and writes it to path, used by the
// meshbench and brickcalibrate tools to record the exact configuration
// that produced a given run's output.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
