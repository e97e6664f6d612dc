package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/mdgt/rutube-saver/internal/platform"
)

// Worker limit bounds; mirrors the range offered to users
const (
	DefaultWorkers = 3
	MinWorkers     = 1
	MaxWorkers     = 16
)

// Other defaults
const (
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
	DefaultProgressStep = 10
)

// Config holds application configuration loaded from TOML
type Config struct {
	OutputDir    string `toml:"output_dir"`
	Workers      int    `toml:"workers"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
	HistoryDB    string `toml:"history_db"`
	ProgressStep int    `toml:"progress_step"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		OutputDir:    defaultOutputDir(),
		Workers:      DefaultWorkers,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		HistoryDB:    defaultHistoryDB(),
		ProgressStep: DefaultProgressStep,
	}
}

// Load reads configuration from path. An empty path means the default
// location; a missing file yields the defaults without error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "rutube-saver.toml"
	}
	return filepath.Join(dir, "rutube-saver", "config.toml")
}

// defaultOutputDir is the user's Downloads folder, falling back to a
// relative directory when the home directory cannot be resolved.
func defaultOutputDir() string {
	dir, err := platform.HomeDownloadsDir()
	if err != nil {
		return "downloads"
	}
	return dir
}

func defaultHistoryDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(dir, "rutube-saver", "history.db")
}

// normalize fills empty fields and clamps the worker limit into range
func (c *Config) normalize() {
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir()
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Workers > MaxWorkers {
		c.Workers = MaxWorkers
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.HistoryDB == "" {
		c.HistoryDB = defaultHistoryDB()
	}
	if c.ProgressStep <= 0 {
		c.ProgressStep = DefaultProgressStep
	}
}

func (c *Config) validate() error {
	if c.Workers < MinWorkers {
		return fmt.Errorf("config: workers must be at least %d, got %d", MinWorkers, c.Workers)
	}
	return nil
}
