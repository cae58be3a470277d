// Package config provides configuration loading and management for lungseg.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"lungseg/pkg/segmentation"
	"lungseg/pkg/visualization"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Segmentation parameters
	Segmentation struct {
		// Threshold is the air/tissue intensity cutoff on the normalized
		// 0-255 scale; valid values lie in [30, 90]
		Threshold int `yaml:"threshold"`

		// JumpSize is the widest bridgeable tissue gap in pixels;
		// valid values lie strictly between 10 and 25
		JumpSize int `yaml:"jumpSize"`
	} `yaml:"segmentation"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for the parallel
		// row passes
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Display parameters
	Display struct {
		// AirColor, TissueColor, NonBodyColor and LungColor are
		// "#RRGGBB" hex strings, one per pixel category; they must be
		// pairwise distinct
		AirColor     string `yaml:"airColor"`
		TissueColor  string `yaml:"tissueColor"`
		NonBodyColor string `yaml:"nonBodyColor"`
		LungColor    string `yaml:"lungColor"`
	} `yaml:"display"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Segmentation.Threshold = segmentation.DefaultThreshold
	cfg.Segmentation.JumpSize = segmentation.DefaultJumpSize

	cfg.Processing.NumCores = runtime.NumCPU()

	cfg.Display.AirColor = visualization.DefaultAirHex
	cfg.Display.TissueColor = visualization.DefaultTissueHex
	cfg.Display.NonBodyColor = visualization.DefaultNonBodyHex
	cfg.Display.LungColor = visualization.DefaultLungHex

	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration against the documented parameter
// ranges. Errors here are user-facing configuration problems reported at
// startup, before any file is loaded or pixel classified.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}

	_, err := visualization.ParsePalette(
		c.Display.AirColor,
		c.Display.TissueColor,
		c.Display.NonBodyColor,
		c.Display.LungColor,
	)
	return err
}

// Params returns the segmentation parameters carried by the configuration.
func (c *Config) Params() segmentation.Params {
	return segmentation.Params{
		Threshold: c.Segmentation.Threshold,
		JumpSize:  c.Segmentation.JumpSize,
		NumCores:  c.Processing.NumCores,
	}
}

// Palette returns the display palette carried by the configuration.
func (c *Config) Palette() (visualization.Palette, error) {
	return visualization.ParsePalette(
		c.Display.AirColor,
		c.Display.TissueColor,
		c.Display.NonBodyColor,
		c.Display.LungColor,
	)
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
