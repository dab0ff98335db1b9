// Package config loads and validates the project configuration that drives
// rendering and aggregation runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/vincentlogarzo/archilume/internal/model"
)

// Paths collects the filesystem layout of one project.
type Paths struct {
	SceneOctree string `yaml:"scene_octree"`
	OvercastSky string `yaml:"overcast_sky"`
	SkyDir      string `yaml:"sky_dir"`
	ViewDir     string `yaml:"view_dir"`
	OctreeDir   string `yaml:"octree_dir"`
	ImageDir    string `yaml:"image_dir"`
	RegionDir   string `yaml:"region_dir"`
	ResultDir   string `yaml:"result_dir"`
	ScaleMap    string `yaml:"scale_map"`
}

// ScaleMapPath returns the pixel-to-world map path, defaulting to a file
// alongside the rendered images.
func (p Paths) ScaleMapPath() string {
	if p.ScaleMap != "" {
		return p.ScaleMap
	}
	return filepath.Join(p.ImageDir, "pixel_to_world_map.txt")
}

// Render holds image resolution and the pass threshold.
type Render struct {
	XRes      int     `yaml:"x_res"`
	YRes      int     `yaml:"y_res"`
	Exposure  float64 `yaml:"exposure"`
	Threshold float64 `yaml:"threshold"`
}

// Workers sets per-phase concurrency caps. Compilation phases are cheap to
// parallelize wide; the scene compile is a single job by construction.
type Workers struct {
	SceneCompile     int `yaml:"scene_compile"`
	AmbientWarm      int `yaml:"ambient_warm"`
	ConditionCompile int `yaml:"condition_compile"`
	Render           int `yaml:"render"`
	Composite        int `yaml:"composite"`
	Convert          int `yaml:"convert"`
	Aggregate        int `yaml:"aggregate"`
}

// For returns the worker cap for a phase, clamped to the host CPU count.
func (w Workers) For(phase model.Phase) int {
	var n int
	switch phase {
	case model.PhaseSceneCompile:
		n = w.SceneCompile
	case model.PhaseAmbientWarm:
		n = w.AmbientWarm
	case model.PhaseConditionCompile:
		n = w.ConditionCompile
	case model.PhaseRender:
		n = w.Render
	case model.PhaseComposite:
		n = w.Composite
	case model.PhaseConvert:
		n = w.Convert
	default:
		n = 1
	}
	if n < 1 {
		n = 1
	}
	if cpus := runtime.NumCPU(); n > cpus {
		n = cpus
	}
	return n
}

// Config is the root configuration document.
type Config struct {
	Project string  `yaml:"project"`
	Paths   Paths   `yaml:"paths"`
	Render  Render  `yaml:"render"`
	Workers Workers `yaml:"workers"`
}

// Default returns the configuration applied underneath a loaded file.
func Default() Config {
	return Config{
		Render: Render{
			XRes:      2048,
			YRes:      2048,
			Exposure:  1,
			Threshold: 300,
		},
		Workers: Workers{
			SceneCompile:     1,
			AmbientWarm:      8,
			ConditionCompile: 12,
			Render:           18,
			Composite:        18,
			Convert:          18,
			Aggregate:        14,
		},
	}
}

// Load reads, schema-validates, and decodes a configuration file on top of
// the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := validate(data); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks constraints the schema cannot express.
func (c Config) Validate() error {
	if c.Paths.SceneOctree == "" {
		return fmt.Errorf("paths.scene_octree is required")
	}
	if c.Paths.OvercastSky == "" {
		return fmt.Errorf("paths.overcast_sky is required")
	}
	for name, dir := range map[string]string{
		"paths.sky_dir":    c.Paths.SkyDir,
		"paths.view_dir":   c.Paths.ViewDir,
		"paths.octree_dir": c.Paths.OctreeDir,
		"paths.image_dir":  c.Paths.ImageDir,
	} {
		if dir == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if c.Render.XRes <= 0 || c.Render.YRes <= 0 {
		return fmt.Errorf("render resolution must be positive")
	}
	if c.Render.Threshold < 0 {
		return fmt.Errorf("render.threshold must not be negative")
	}
	return nil
}
