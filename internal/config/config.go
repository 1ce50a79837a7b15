// Package config loads the displayctl configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/displayworks/displayctl/internal/arrange"
)

// CanvasConfig tunes the arrangement canvas transform.
type CanvasConfig struct {
	MinScale float64 `yaml:"min_scale,omitempty"`
	MaxScale float64 `yaml:"max_scale,omitempty"`
	Margin   float64 `yaml:"margin,omitempty"`
	Spacing  float64 `yaml:"spacing,omitempty"`
	ZoomStep float64 `yaml:"zoom_step,omitempty"`
}

// CaptureConfig tunes topology capture.
type CaptureConfig struct {
	// MinWindowArea is the smallest window area in square pixels kept
	// during capture. 0 uses the built-in default.
	MinWindowArea int `yaml:"min_window_area,omitempty"`
}

// ApplyConfig configures the external layout tool.
type ApplyConfig struct {
	// ToolPath pins displayplacer to an explicit path. Empty searches
	// the well-known install locations and PATH.
	ToolPath string `yaml:"tool_path,omitempty"`
}

// DatabaseConfig locates the layout database.
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`
	// File receives log output; empty logs to stderr.
	File string `yaml:"file,omitempty"`
}

// Config is the full displayctl configuration.
type Config struct {
	Canvas   CanvasConfig   `yaml:"canvas,omitempty"`
	Capture  CaptureConfig  `yaml:"capture,omitempty"`
	Apply    ApplyConfig    `yaml:"apply,omitempty"`
	Database DatabaseConfig `yaml:"database,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	arrangeDefaults := arrange.DefaultConfig()
	return &Config{
		Canvas: CanvasConfig{
			MinScale: arrangeDefaults.MinScale,
			MaxScale: arrangeDefaults.MaxScale,
			Margin:   arrangeDefaults.Margin,
			Spacing:  arrangeDefaults.Spacing,
			ZoomStep: arrangeDefaults.ZoomStep,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DefaultConfigPath returns ~/.config/displayctl/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "displayctl", "config.yaml"), nil
}

// DefaultDatabasePath returns ~/.local/share/displayctl/layouts.db.
func DefaultDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "displayctl", "layouts.db"), nil
}

// Load reads the configuration from the standard location. A missing
// file yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from an explicit path. A missing
// file yields the defaults; a malformed or invalid file is an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Canvas.MinScale <= 0 {
		return fmt.Errorf("canvas.min_scale must be positive, got %v", c.Canvas.MinScale)
	}
	if c.Canvas.MaxScale < c.Canvas.MinScale {
		return fmt.Errorf("canvas.max_scale %v below min_scale %v", c.Canvas.MaxScale, c.Canvas.MinScale)
	}
	if c.Canvas.Spacing < 0 {
		return fmt.Errorf("canvas.spacing must not be negative, got %v", c.Canvas.Spacing)
	}
	if c.Capture.MinWindowArea < 0 {
		return fmt.Errorf("capture.min_window_area must not be negative, got %d", c.Capture.MinWindowArea)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// ArrangeConfig converts the canvas section for the arrangement session.
func (c *Config) ArrangeConfig() arrange.Config {
	return arrange.Config{
		MinScale: c.Canvas.MinScale,
		MaxScale: c.Canvas.MaxScale,
		Margin:   c.Canvas.Margin,
		Spacing:  c.Canvas.Spacing,
		ZoomStep: c.Canvas.ZoomStep,
	}
}

// DatabasePath resolves the configured database path, defaulting to the
// standard location.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	return DefaultDatabasePath()
}

// ParseLevel maps a config level string to a slog level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown logging.level %q", level)
}

// NewLogger builds the process logger from the logging section.
func (c *Config) NewLogger() (*slog.Logger, error) {
	level, err := ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}

	out := os.Stderr
	if c.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.Logging.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(c.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), nil
}
