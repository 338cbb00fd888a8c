package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threshold != 0.5 {
		t.Errorf("threshold = %v, want 0.5", cfg.Threshold)
	}
	if len(cfg.Extensions) != 1 || cfg.Extensions[0] != ".jpg" {
		t.Errorf("extensions = %v", cfg.Extensions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := []byte(`
folder: /data/mri
threshold: 0.25
nl_means:
  patch_size: 7
log:
  level: debug
  json: true
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Folder != "/data/mri" {
		t.Errorf("folder = %q", cfg.Folder)
	}
	if cfg.Threshold != 0.25 {
		t.Errorf("threshold = %v", cfg.Threshold)
	}
	if cfg.NLMeans.PatchSize != 7 {
		t.Errorf("patch_size = %d", cfg.NLMeans.PatchSize)
	}
	if cfg.NLMeans.PatchDistance != 3 {
		t.Errorf("patch_distance should keep its default, got %d", cfg.NLMeans.PatchDistance)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("threshold: [not a number"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyArgs(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyArgs(nil); err != nil {
		t.Fatal(err)
	}
	if cfg.Folder != "." {
		t.Errorf("folder = %q", cfg.Folder)
	}
	if err := cfg.ApplyArgs([]string{"/scans"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Folder != "/scans" {
		t.Errorf("folder = %q", cfg.Folder)
	}
	if err := cfg.ApplyArgs([]string{"a", "b"}); err == nil {
		t.Error("expected error for two arguments")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty folder", func(c *Config) { c.Folder = " " }},
		{"no extensions", func(c *Config) { c.Extensions = nil }},
		{"extension without dot", func(c *Config) { c.Extensions = []string{"jpg"} }},
		{"threshold above one", func(c *Config) { c.Threshold = 1.5 }},
		{"threshold below zero", func(c *Config) { c.Threshold = -0.1 }},
		{"zero sigma", func(c *Config) { c.Bilateral.SigmaColor = 0 }},
		{"even patch", func(c *Config) { c.NLMeans.PatchSize = 4 }},
		{"zero distance", func(c *Config) { c.NLMeans.PatchDistance = 0 }},
		{"zero strength", func(c *Config) { c.NLMeans.StrengthFactor = 0 }},
		{"zero tiles", func(c *Config) { c.CLAHE.TileGrid = 0 }},
		{"zero panel", func(c *Config) { c.Window.MaxPanelSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNormalizedExtensions(t *testing.T) {
	cfg := Default()
	cfg.Extensions = []string{".JPG", ".Jpeg"}
	got := cfg.NormalizedExtensions()
	if got[0] != ".jpg" || got[1] != ".jpeg" {
		t.Errorf("got %v", got)
	}
}
