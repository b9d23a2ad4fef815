package ggame

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
title: demo
width: 640
height: 360
ticks_per_second: 120
max_lag: 100ms
backend: software
`))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Title != "demo" || cfg.Width != 640 || cfg.Height != 360 {
		t.Errorf("window = %q %dx%d", cfg.Title, cfg.Width, cfg.Height)
	}
	if cfg.TicksPerSecond != 120 || cfg.MaxLag.Duration() != 100*time.Millisecond {
		t.Errorf("timing = %d tps, %v", cfg.TicksPerSecond, cfg.MaxLag.Duration())
	}
	if cfg.Backend != "software" {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	// Unset fields keep their defaults.
	if !cfg.VSync {
		t.Error("VSync default lost")
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"zero width", "width: 0", ErrInvalidConfig},
		{"negative tps", "ticks_per_second: -1", ErrInvalidConfig},
		{"lag below step", "ticks_per_second: 10\nmax_lag: 50ms", ErrInvalidConfig},
		{"negative fps", "max_fps: -5", ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.yaml)); !errors.Is(err, tt.want) {
				t.Errorf("ParseConfig() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ParseConfig([]byte("max_lag: soon")); err == nil {
		t.Error("ParseConfig(bad duration) should fail")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if got, want := cfg.Step(), time.Second/60; got != want {
		t.Errorf("Step() = %v, want %v", got, want)
	}
}

func TestDurationRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(struct {
		D Duration `yaml:"d"`
	}{Duration(1500 * time.Millisecond)})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "d: 1.5s\n" {
		t.Errorf("Marshal() = %q", out)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := os.WriteFile(path, []byte("title: file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Title != "file" {
		t.Errorf("Title = %q, want file", cfg.Title)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig(missing) error = %v, want ErrNotExist", err)
	}
}
