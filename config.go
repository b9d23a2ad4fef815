package ggame

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML strings such as "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config holds the engine settings fixed at startup.
type Config struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`

	// TicksPerSecond is the fixed update rate.
	TicksPerSecond int `yaml:"ticks_per_second"`
	// MaxLag caps the time simulated in one frame. Anything beyond it is
	// dropped.
	MaxLag Duration `yaml:"max_lag"`
	// MaxFPS limits presented frames per second in Run. Zero means no limit.
	MaxFPS float64 `yaml:"max_fps"`

	// Backend names the graphics backend. Empty picks the best registered
	// one.
	Backend string `yaml:"backend"`
	VSync   bool   `yaml:"vsync"`
}

// DefaultConfig returns the default settings: a 1280x720 window updated 60
// times per second with a 250ms lag cap.
func DefaultConfig() Config {
	return Config{
		Title:          "ggame",
		Width:          1280,
		Height:         720,
		TicksPerSecond: 60,
		MaxLag:         Duration(250 * time.Millisecond),
		VSync:          true,
	}
}

// ParseConfig parses YAML over the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("ggame: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("ggame: %w", err)
	}
	return ParseConfig(data)
}

// Step returns the fixed update step.
func (c Config) Step() time.Duration {
	if c.TicksPerSecond <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.TicksPerSecond)
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.TicksPerSecond <= 0:
		return fmt.Errorf("%w: ticks per second %d", ErrInvalidConfig, c.TicksPerSecond)
	case c.MaxLag.Duration() < c.Step():
		return fmt.Errorf("%w: max lag %v below one step", ErrInvalidConfig, c.MaxLag.Duration())
	case c.MaxFPS < 0:
		return fmt.Errorf("%w: max fps %v", ErrInvalidConfig, c.MaxFPS)
	}
	return nil
}
