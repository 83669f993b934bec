// Package config loads fillr's YAML configuration.
// A missing file is not an error: defaults are returned instead.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// ErrInvalidPresets is returned when the preset list is empty, unsorted or
// contains non-positive minutes.
var ErrInvalidPresets = errors.New("invalid presets")

// Config holds the static settings read at startup.
type Config struct {
	Presets       []int `yaml:"presets"`        // focus lengths in minutes, ascending
	DefaultIndex  int   `yaml:"default_index"`  // preset selected on launch
	TickMillis    int   `yaml:"tick_ms"`        // display refresh while a run is active
	StartDelayMS  int   `yaml:"start_delay_ms"` // inactivity before the countdown starts
	KeepRunOnExit bool  `yaml:"keep_run_on_exit"`

	DBPath  string `yaml:"db_path"`
	LogPath string `yaml:"log_path"`

	Bell bool `yaml:"bell"` // ring the terminal bell on alerts

	path string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Presets:      []int{10, 25, 60, 90},
		DefaultIndex: 1,
		TickMillis:   33,
		StartDelayMS: 1000,
		Bell:         true,
	}
}

// Path returns the file the config was loaded from, if any.
func (c Config) Path() string { return c.path }

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

func (c Config) StartDelay() time.Duration {
	return time.Duration(c.StartDelayMS) * time.Millisecond
}

// Validate checks the preset list and fills in derived paths.
func (c *Config) Validate() error {
	if len(c.Presets) == 0 {
		return fmt.Errorf("%w: list is empty", ErrInvalidPresets)
	}
	for _, m := range c.Presets {
		if m <= 0 {
			return fmt.Errorf("%w: %d minutes", ErrInvalidPresets, m)
		}
	}
	if !sort.IntsAreSorted(c.Presets) {
		return fmt.Errorf("%w: not ascending", ErrInvalidPresets)
	}
	if c.DefaultIndex < 0 || c.DefaultIndex >= len(c.Presets) {
		c.DefaultIndex = 0
	}
	if c.TickMillis <= 0 {
		c.TickMillis = 33
	}
	if c.StartDelayMS < 0 {
		c.StartDelayMS = 0
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(StateDir(), "fillr.db")
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(StateDir(), "fillr.log")
	}
	return nil
}

// Load reads the config at DefaultPath.
func Load() (Config, error) {
	return LoadFile(DefaultPath())
}

// LoadFile reads the config at path.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	cfg.path = path

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		cfg.path = ""
	} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// DefaultPath returns ConfigDir()/config.yaml.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), configFileName)
}
