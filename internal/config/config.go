// Package config loads the enhancer settings from an optional YAML file and
// supplies defaults for everything the file leaves out.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is looked up in the working directory at startup.
const FileName = "mri-enhancer.yaml"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Folder holds the images to browse
	Folder string `yaml:"folder"`

	// Extensions selects which files in Folder are loaded
	Extensions []string `yaml:"extensions"`

	// Threshold is the initial slider position
	Threshold float64 `yaml:"threshold"`

	Bilateral struct {
		// SigmaColor is the intensity similarity sensitivity on the [0,1] scale
		SigmaColor float64 `yaml:"sigma_color"`

		// SigmaSpatial is the spatial neighbourhood sigma in pixels
		SigmaSpatial float64 `yaml:"sigma_spatial"`
	} `yaml:"bilateral"`

	NLMeans struct {
		PatchSize     int `yaml:"patch_size"`
		PatchDistance int `yaml:"patch_distance"`

		// StrengthFactor multiplies the image standard deviation to give h
		StrengthFactor float64 `yaml:"strength_factor"`
	} `yaml:"nl_means"`

	CLAHE struct {
		ClipLimit float64 `yaml:"clip_limit"`
		TileGrid  int     `yaml:"tile_grid"`
	} `yaml:"clahe"`

	Window struct {
		Width  float32 `yaml:"width"`
		Height float32 `yaml:"height"`

		// MaxPanelSize caps the longest side of each displayed panel
		MaxPanelSize int `yaml:"max_panel_size"`
	} `yaml:"window"`

	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
}

// Default returns a configuration with default values
func Default() *Config {
	cfg := &Config{}

	cfg.Folder = "."
	cfg.Extensions = []string{".jpg"}
	cfg.Threshold = 0.5

	cfg.Bilateral.SigmaColor = 0.1
	cfg.Bilateral.SigmaSpatial = 5

	cfg.NLMeans.PatchSize = 5
	cfg.NLMeans.PatchDistance = 3
	cfg.NLMeans.StrengthFactor = 0.1

	cfg.CLAHE.ClipLimit = 2.0
	cfg.CLAHE.TileGrid = 8

	cfg.Window.Width = 1600
	cfg.Window.Height = 900
	cfg.Window.MaxPanelSize = 512

	cfg.Log.Level = "info"

	return cfg
}

// Load reads configuration from a YAML file.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// ApplyArgs lets the single positional argument override the folder.
func (c *Config) ApplyArgs(args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 1:
		c.Folder = args[0]
		return nil
	default:
		return fmt.Errorf("expected at most one folder argument, got %d", len(args))
	}
}

// Validate checks that every value is usable by the processing pipeline.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Folder) == "" {
		return errors.New("folder must not be empty")
	}
	if len(c.Extensions) == 0 {
		return errors.New("at least one extension is required")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold %.2f outside [0, 1]", c.Threshold)
	}
	if c.Bilateral.SigmaColor <= 0 || c.Bilateral.SigmaSpatial <= 0 {
		return errors.New("bilateral sigmas must be positive")
	}
	if c.NLMeans.PatchSize <= 0 || c.NLMeans.PatchSize%2 == 0 {
		return fmt.Errorf("nl_means patch_size %d must be a positive odd number", c.NLMeans.PatchSize)
	}
	if c.NLMeans.PatchDistance <= 0 {
		return fmt.Errorf("nl_means patch_distance %d must be positive", c.NLMeans.PatchDistance)
	}
	if c.NLMeans.StrengthFactor <= 0 {
		return errors.New("nl_means strength_factor must be positive")
	}
	if c.CLAHE.ClipLimit <= 0 || c.CLAHE.TileGrid <= 0 {
		return errors.New("clahe clip_limit and tile_grid must be positive")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 || c.Window.MaxPanelSize <= 0 {
		return errors.New("window dimensions must be positive")
	}
	return nil
}

// NormalizedExtensions returns the extensions lower-cased.
func (c *Config) NormalizedExtensions() []string {
	out := make([]string, len(c.Extensions))
	for i, ext := range c.Extensions {
		out[i] = strings.ToLower(ext)
	}
	return out
}
