// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

// Package config provides configuration loading and management for chatcv.
//
// Supports TOML configuration with sensible defaults and environment
// variable overrides. A local .env file, when present, is folded into the
// environment before overrides are read.
//
// Configuration file location (in order of precedence):
//   - ~/.chatcv/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/barodev/chatcv-tui/internal/api"
)

// Storage backend names accepted in storage.backend.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatcv configuration.
type Config struct {
	// API configuration
	API APIConfig `toml:"api"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Log configuration
	Log LogConfig `toml:"log"`
}

// APIConfig contains remote backend configuration.
type APIConfig struct {
	// URL is the base URL of the chatbot backend.
	URL string `toml:"url"`
	// TimeoutSecs is the request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
}

// StorageConfig contains chat history storage configuration.
type StorageConfig struct {
	// Backend selects the history backend: "sqlite" or "file".
	Backend string `toml:"backend"`
	// DataDir overrides where history lives (empty = ~/.chatcv).
	DataDir string `toml:"data_dir"`
	// RecentLimit caps how many chats the history views show (0 = default).
	RecentLimit int `toml:"recent_limit"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Markdown renders assistant replies through the markdown renderer.
	Markdown bool `toml:"markdown"`
	// DefaultMode preselects a chat mode at startup ("" = ask).
	DefaultMode string `toml:"default_mode"`
}

// LogConfig contains log file configuration.
type LogConfig struct {
	// Level is the minimum level written: "debug", "info", "warn", "error".
	Level string `toml:"level"`
	// Path overrides the log file location (empty = ~/.chatcv/chatcv.log).
	Path string `toml:"path"`
	// MaxSizeMB rotates the log file once it exceeds this size.
	MaxSizeMB int `toml:"max_size_mb"`
	// MaxBackups is how many rotated files to keep.
	MaxBackups int `toml:"max_backups"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:         api.DefaultBaseURL,
			TimeoutSecs: 60,
		},
		Storage: StorageConfig{
			Backend:     BackendSQLite,
			RecentLimit: 0,
		},
		UI: UIConfig{
			Markdown: true,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 2,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the chatcv configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatcv"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DataDir resolves the directory holding chat history and the log file.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return Dir()
}

// LogPath resolves the log file location.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chatcv.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.chatcv/config.toml, falling back to
// defaults when the file is absent. A .env file in the working directory
// is folded into the environment first, then environment overrides are
// applied, then the result is validated.
func Load() (*Config, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadFromPath loads a specific config file with env overrides and
// validation applied. Used by tests and the --config escape hatch.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to ~/.chatcv/config.toml.
func Save(cfg *Config) error {
	if err := EnsureDir(); err != nil {
		return err
	}
	path, err := Path()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CHATCV_API_URL: overrides api.url
//   - CHATCV_TIMEOUT_SECS: overrides api.timeout_secs
//   - CHATCV_STORAGE_BACKEND: overrides storage.backend
//   - CHATCV_DATA_DIR: overrides storage.data_dir
//   - CHATCV_MODE: overrides ui.default_mode
//   - CHATCV_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("CHATCV_API_URL"); u != "" {
		c.API.URL = u
	}
	if secs := os.Getenv("CHATCV_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil {
			c.API.TimeoutSecs = n
		}
	}
	if backend := os.Getenv("CHATCV_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if dir := os.Getenv("CHATCV_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
	if mode := os.Getenv("CHATCV_MODE"); mode != "" {
		c.UI.DefaultMode = mode
	}
	if level := os.Getenv("CHATCV_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// SetDefaults fills zero values a partial config file left unset.
func (c *Config) SetDefaults() {
	if c.API.URL == "" {
		c.API.URL = api.DefaultBaseURL
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = 60
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendSQLite
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 5
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 2
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.url",
			Message: fmt.Sprintf("invalid URL '%s'", c.API.URL),
		})
	}

	if c.API.TimeoutSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: "must be at least 1 second",
		})
	}

	switch strings.ToLower(c.Storage.Backend) {
	case BackendSQLite, BackendFile:
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: sqlite, file", c.Storage.Backend),
		})
	}

	if c.Storage.RecentLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "storage.recent_limit",
			Message: "cannot be negative",
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
