// Package config provides loading, saving, and validation of the application
// configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "MINDCANVAS_"

// StorageConfig selects and parameterizes the storage backend.
type StorageConfig struct {
	// Driver is "file" or "sqlite".
	Driver string `toml:"driver"`
	// Path is the JSON collection file used by the file driver.
	Path string `toml:"path"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `toml:"sqlite_path"`
	// Backups is how many rotated gzip backups the file driver keeps.
	Backups int `toml:"backups"`
	// Watch reloads the collection when the file changes on disk.
	Watch bool `toml:"watch"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// SummarizeConfig points at the external summarization endpoint. An empty
// endpoint disables the feature.
type SummarizeConfig struct {
	Endpoint       string `toml:"endpoint"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
}

// CanvasConfig sizes the per-session viewport used for center-anchored zoom
// and reset.
type CanvasConfig struct {
	ViewportWidth  float64 `toml:"viewport_width"`
	ViewportHeight float64 `toml:"viewport_height"`
}

// Config is the full application configuration.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Log       LogConfig       `toml:"log"`
	Summarize SummarizeConfig `toml:"summarize"`
	Canvas    CanvasConfig    `toml:"canvas"`
}

// DefaultDir returns the directory holding the config file and, by default,
// all application data.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine user config directory: %w", err)
	}
	return filepath.Join(base, "mindcanvas"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:     "file",
			Path:       filepath.Join(dir, "mindmaps.json"),
			SQLitePath: filepath.Join(dir, "mindcanvas.db"),
			Backups:    3,
			Watch:      true,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "mindcanvas.log"),
		},
		Summarize: SummarizeConfig{
			TimeoutSeconds: 30,
			MaxRetries:     2,
		},
		Canvas: CanvasConfig{
			ViewportWidth:  1280,
			ViewportHeight: 800,
		},
	}
}

// Load reads the configuration from path, creating it with defaults when it
// does not exist yet. An empty path uses the default location. Environment
// variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default(filepath.Dir(path))

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := Save(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := toml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as TOML, creating parent directories.
func Save(cfg *Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyEnv maps MINDCANVAS_* variables onto the config.
func applyEnv(cfg *Config) error {
	if v, ok := env("STORAGE_DRIVER"); ok {
		cfg.Storage.Driver = v
	}
	if v, ok := env("STORAGE_PATH"); ok {
		cfg.Storage.Path = v
	}
	if v, ok := env("STORAGE_SQLITE_PATH"); ok {
		cfg.Storage.SQLitePath = v
	}
	if v, ok := env("STORAGE_BACKUPS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sSTORAGE_BACKUPS value %q: %w", EnvPrefix, v, err)
		}
		cfg.Storage.Backups = n
	}
	if v, ok := env("STORAGE_WATCH"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sSTORAGE_WATCH value %q: %w", EnvPrefix, v, err)
		}
		cfg.Storage.Watch = b
	}
	if v, ok := env("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := env("LOG_FILE"); ok {
		cfg.Log.File = v
	}
	if v, ok := env("SUMMARIZE_ENDPOINT"); ok {
		cfg.Summarize.Endpoint = v
	}
	if v, ok := env("SUMMARIZE_API_KEY"); ok {
		cfg.Summarize.APIKey = v
	}
	if v, ok := env("SUMMARIZE_TIMEOUT_SECONDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sSUMMARIZE_TIMEOUT_SECONDS value %q: %w", EnvPrefix, v, err)
		}
		cfg.Summarize.TimeoutSeconds = n
	}
	if v, ok := env("SUMMARIZE_MAX_RETRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sSUMMARIZE_MAX_RETRIES value %q: %w", EnvPrefix, v, err)
		}
		cfg.Summarize.MaxRetries = n
	}
	return nil
}

func env(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	return v, ok
}

// Validate checks the configuration for values the application cannot run
// with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unsupported storage driver %q (want file or sqlite)", c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		return errors.New("storage path must not be empty")
	}
	if c.Storage.Driver == "sqlite" && c.Storage.SQLitePath == "" {
		return errors.New("sqlite path must not be empty")
	}
	if c.Storage.Backups < 0 {
		return errors.New("storage backups must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if c.Summarize.TimeoutSeconds <= 0 {
		return errors.New("summarize timeout must be positive")
	}
	if c.Summarize.MaxRetries < 0 {
		return errors.New("summarize max retries must not be negative")
	}
	if c.Canvas.ViewportWidth <= 0 || c.Canvas.ViewportHeight <= 0 {
		return errors.New("canvas viewport dimensions must be positive")
	}
	return nil
}
