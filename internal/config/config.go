// Package config loads the dicomseries settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrsinham/dicomseries/internal/util"
)

// Config holds the settings shared by the dicomseries commands.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	Scan     ScanConfig     `yaml:"scan"`
	LogLevel string         `yaml:"log_level"`
}

// RegistryConfig locates the segmented property registry.
type RegistryConfig struct {
	Path          string `yaml:"path"`
	OmitFirstLine bool   `yaml:"omit_first_line"`
}

// ScanConfig drives the series reader.
type ScanConfig struct {
	ComputedTags        []string `yaml:"computed_tags,omitempty"`
	FirstInstanceNumber int      `yaml:"first_instance_number"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			OmitFirstLine: true,
		},
		Scan: ScanConfig{
			ComputedTags: []string{"Modality", "SeriesDescription"},
		},
		LogLevel: "warn",
	}
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating its directory if needed.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the log level, the first instance number and every
// computed tag name.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.Scan.FirstInstanceNumber != 0 && c.Scan.FirstInstanceNumber != 1 {
		errs = append(errs, fmt.Errorf("first_instance_number must be 0 or 1, got %d", c.Scan.FirstInstanceNumber))
	}
	if _, err := c.ComputedTags(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}

// ComputedTags resolves the computed tag names.
func (c *Config) ComputedTags() ([]util.TagInfo, error) {
	tags := make([]util.TagInfo, 0, len(c.Scan.ComputedTags))
	var errs []error
	for _, name := range c.Scan.ComputedTags {
		info, err := util.ComputableTag(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("computed_tags: %w", err))
			continue
		}
		tags = append(tags, info)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return tags, nil
}
