// Package config loads the viewer settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/ShotView/pkg/topology"
	"github.com/OpenTraceLab/ShotView/pkg/waveform"
)

// Window holds the initial preview window settings.
type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Config stores the viewer settings read from config.yaml.
type Config struct {
	// ClockLabels maps a connection-table label to FAST_CLOCK or SLOW_CLOCK.
	ClockLabels  map[string]string `yaml:"clock_labels"`
	PanStep      float64           `yaml:"pan_step"`
	ZoomStep     float64           `yaml:"zoom_step"`
	GridSamples  int               `yaml:"grid_samples"`
	DigitalLines int               `yaml:"digital_lines"`
	Window       Window            `yaml:"window"`

	labels map[string]topology.ClockKind
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		ClockLabels: map[string]string{
			topology.FastClockLabel: string(topology.FastClock),
			topology.SlowClockLabel: string(topology.SlowClock),
		},
		PanStep:      0.5,
		ZoomStep:     0.1,
		GridSamples:  10000,
		DigitalLines: 32,
		Window: Window{
			Title:  "Labscript experiment preview",
			Width:  400,
			Height: 300,
		},
	}
}

// Validate fills unset values with defaults and checks the clock labels.
func (c *Config) Validate() error {
	def := DefaultConfig()

	if c.PanStep <= 0 {
		c.PanStep = def.PanStep
	}
	if c.ZoomStep <= 0 {
		c.ZoomStep = def.ZoomStep
	}
	if c.GridSamples < 2 {
		c.GridSamples = def.GridSamples
	}
	if c.DigitalLines <= 0 {
		c.DigitalLines = def.DigitalLines
	}
	if c.DigitalLines > waveform.WordBits {
		c.DigitalLines = waveform.WordBits
	}
	if c.Window.Title == "" {
		c.Window.Title = def.Window.Title
	}
	if c.Window.Width <= 0 {
		c.Window.Width = def.Window.Width
	}
	if c.Window.Height <= 0 {
		c.Window.Height = def.Window.Height
	}
	if len(c.ClockLabels) == 0 {
		c.ClockLabels = def.ClockLabels
	}

	labels := make(map[string]topology.ClockKind, len(c.ClockLabels))
	for label, kind := range c.ClockLabels {
		k, err := topology.ParseClockKind(strings.TrimSpace(kind))
		if err != nil {
			return fmt.Errorf("clock_labels[%q]: %w", label, err)
		}
		labels[label] = k
	}
	c.labels = labels
	return nil
}

// Labels returns the validated clock label table.
func (c *Config) Labels() map[string]topology.ClockKind {
	if c.labels == nil {
		return topology.DefaultLabels()
	}
	return c.labels
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	// Windows: %APPDATA%\ShotView
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "ShotView", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "shotview", "config.yaml"), nil
}

// Load reads and validates the config at path. The file must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads the config from the platform config directory, or the
// defaults when there is none.
func LoadDefault() (*Config, error) {
	path, err := getConfigPath()
	if err == nil {
		cfg, err := Load(path)
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}
	cfg := DefaultConfig()
	return cfg, cfg.Validate()
}
