package config

import (
	"os"
	"path/filepath"
	"testing"

	"lungseg/pkg/segmentation"
)

// TestDefaultConfig verifies the defaults are internally valid
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Segmentation.Threshold != segmentation.DefaultThreshold {
		t.Errorf("Expected default threshold %d, got %d",
			segmentation.DefaultThreshold, cfg.Segmentation.Threshold)
	}
	if cfg.Segmentation.JumpSize != segmentation.DefaultJumpSize {
		t.Errorf("Expected default jump size %d, got %d",
			segmentation.DefaultJumpSize, cfg.Segmentation.JumpSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default configuration should validate, got %v", err)
	}
}

// TestLoadConfigMissingFile verifies a missing file falls back to defaults
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got error %v", err)
	}
	if cfg.Segmentation.Threshold != segmentation.DefaultThreshold {
		t.Errorf("Expected default threshold, got %d", cfg.Segmentation.Threshold)
	}
}

// TestLoadConfigOverrides verifies YAML values override the defaults
// while unspecified keys keep them
func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lungseg.yaml")
	yaml := "segmentation:\n  threshold: 55\n  jumpSize: 20\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Segmentation.Threshold != 55 {
		t.Errorf("Expected threshold 55, got %d", cfg.Segmentation.Threshold)
	}
	if cfg.Segmentation.JumpSize != 20 {
		t.Errorf("Expected jump size 20, got %d", cfg.Segmentation.JumpSize)
	}
	if cfg.Display.LungColor == "" {
		t.Errorf("Expected default lung color to survive partial config")
	}
}

// TestConfigRoundTrip verifies SaveConfig output loads back identically
func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")

	cfg := DefaultConfig()
	cfg.Segmentation.Threshold = 60
	cfg.Display.LungColor = "#ABCDEF"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Segmentation.Threshold != 60 {
		t.Errorf("Expected threshold 60 after round trip, got %d", loaded.Segmentation.Threshold)
	}
	if loaded.Display.LungColor != "#ABCDEF" {
		t.Errorf("Expected lung color #ABCDEF after round trip, got %s", loaded.Display.LungColor)
	}
}

// TestValidateRejectsBadParameters verifies out-of-range tunables are
// caught at startup
func TestValidateRejectsBadParameters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segmentation.Threshold = 95
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected error for threshold 95, got nil")
	}

	cfg = DefaultConfig()
	cfg.Segmentation.JumpSize = 25
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected error for jump size 25, got nil")
	}
}

// TestValidateRejectsBadColors verifies color problems are caught at
// startup rather than render time
func TestValidateRejectsBadColors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Display.AirColor = "red"
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected error for unparseable color, got nil")
	}

	cfg = DefaultConfig()
	cfg.Display.TissueColor = cfg.Display.LungColor
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected error for duplicate colors, got nil")
	}
}

// TestCreateDefaultConfigFile verifies the generated file exists and
// validates
func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated", "lungseg.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Generated configuration should validate, got %v", err)
	}
}
