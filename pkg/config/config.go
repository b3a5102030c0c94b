// Package config loads settings for the brep command line tool.
//
// Config file locations (priority order):
//  1. $BREP_CONFIG
//  2. ./brep.yaml
//  3. $XDG_CONFIG_HOME/brep/config.yaml
//  4. ~/.config/brep/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath is the environment variable for an explicit config path
	EnvConfigPath = "BREP_CONFIG"
	// ConfigFileName is the config file looked for in the working directory
	ConfigFileName = "brep.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "brep"
)

// Config is the full set of tool settings.
type Config struct {
	Snap   SnapConfig   `yaml:"snap"`
	Engine EngineConfig `yaml:"engine"`
	Mesh   MeshConfig   `yaml:"mesh"`
	Export ExportConfig `yaml:"export"`
}

// SnapConfig controls cursor snapping in sketches.
type SnapConfig struct {
	Tolerance float64 `yaml:"tolerance"`
	GridSize  float64 `yaml:"grid_size"`
}

// EngineConfig controls script evaluation.
type EngineConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// MeshConfig controls tessellation and primitive resolution.
type MeshConfig struct {
	// CurveSamples is the number of segments per curved edge.
	CurveSamples int `yaml:"curve_samples"`
	// BooleanCells is the marching cubes resolution for boolean results.
	BooleanCells int `yaml:"boolean_cells"`
	// Segments is the facet count around cylinders, cones and spheres.
	Segments int `yaml:"segments"`
}

// ExportConfig controls file output.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// Load finds and loads the config file, or returns defaults if none found.
// The returned string is the path that was read, empty for defaults.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Snap.Tolerance == 0 {
		c.Snap.Tolerance = 5
	}
	if c.Snap.GridSize == 0 {
		c.Snap.GridSize = 10
	}
	if c.Engine.Timeout == 0 {
		c.Engine.Timeout = 5 * time.Second
	}
	if c.Mesh.CurveSamples == 0 {
		c.Mesh.CurveSamples = 8
	}
	if c.Mesh.BooleanCells == 0 {
		c.Mesh.BooleanCells = 64
	}
	if c.Mesh.Segments == 0 {
		c.Mesh.Segments = 32
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "."
	}
}

// Validate rejects negative values. Zero means "use the default".
func (c *Config) Validate() error {
	switch {
	case c.Snap.Tolerance < 0:
		return fmt.Errorf("snap.tolerance must not be negative, got %g", c.Snap.Tolerance)
	case c.Snap.GridSize < 0:
		return fmt.Errorf("snap.grid_size must not be negative, got %g", c.Snap.GridSize)
	case c.Engine.Timeout < 0:
		return fmt.Errorf("engine.timeout must not be negative, got %s", c.Engine.Timeout)
	case c.Mesh.CurveSamples < 0:
		return fmt.Errorf("mesh.curve_samples must not be negative, got %d", c.Mesh.CurveSamples)
	case c.Mesh.BooleanCells < 0:
		return fmt.Errorf("mesh.boolean_cells must not be negative, got %d", c.Mesh.BooleanCells)
	case c.Mesh.Segments != 0 && c.Mesh.Segments < 3:
		return fmt.Errorf("mesh.segments must be at least 3, got %d", c.Mesh.Segments)
	}
	return nil
}

// FindConfigPath searches for a config file in priority order and returns
// an empty string if none exists.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		path := filepath.Join(home, ".config", ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
