// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for ByChat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.bychat/config.toml
//   - ~/.bychat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bychat/bychat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ByChat configuration.
type Config struct {
	// General settings
	Version      string `toml:"version" json:"version"`
	DefaultModel string `toml:"default_model" json:"default_model"`

	// DataDir holds the key-value store file. Empty means ~/.bychat.
	DataDir string `toml:"data_dir" json:"data_dir"`

	// Ollama (inference gateway) configuration
	Ollama OllamaConfig `toml:"ollama" json:"ollama"`

	// Auth (identity provider) configuration
	Auth AuthConfig `toml:"auth" json:"auth"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// OllamaConfig contains inference gateway configuration.
type OllamaConfig struct {
	// URL is the Ollama server base URL
	URL string `toml:"url" json:"url"`
	// ChatTimeoutSecs bounds one completion round trip
	ChatTimeoutSecs int `toml:"chat_timeout_secs" json:"chat_timeout_secs"`
	// ListTimeoutSecs bounds health checks and model listing
	ListTimeoutSecs int `toml:"list_timeout_secs" json:"list_timeout_secs"`
}

// AuthConfig contains identity provider configuration. Both fields
// empty means the application runs local-only with auth disabled.
type AuthConfig struct {
	// URL is the provider's project URL
	URL string `toml:"url" json:"url"`
	// AnonKey is the provider's public API key
	AnonKey string `toml:"anon_key" json:"anon_key"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Markdown renders assistant replies as formatted markdown
	Markdown bool `toml:"markdown" json:"markdown"`
	// Color enables styled output
	Color bool `toml:"color" json:"color"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version:      "1.0",
		DefaultModel: "",
		DataDir:      "",
		Ollama: OllamaConfig{
			URL:             "http://127.0.0.1:11434",
			ChatTimeoutSecs: 120,
			ListTimeoutSecs: 10,
		},
		Auth: AuthConfig{},
		UI: UIConfig{
			Markdown: true,
			Color:    true,
		},
	}
}

// fillDefaults fills zero values after a partial file load.
func fillDefaults(cfg *Config) error {
	def := Default()

	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = def.Ollama.URL
	}
	if cfg.Ollama.ChatTimeoutSecs == 0 {
		cfg.Ollama.ChatTimeoutSecs = def.Ollama.ChatTimeoutSecs
	}
	if cfg.Ollama.ListTimeoutSecs == 0 {
		cfg.Ollama.ListTimeoutSecs = def.Ollama.ListTimeoutSecs
	}
	return nil
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the configuration directory (~/.bychat).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".bychat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DataPath returns the key-value store file path, honoring DataDir.
func (c *Config) DataPath() (string, error) {
	dir := c.DataDir
	if dir == "" {
		var err error
		dir, err = ConfigDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "store.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	return finishLoad(cfg)
}

func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from an explicit path, picking the
// format from the extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = LoadTOML(cfg, path)
	case ".json":
		err = LoadJSON(cfg, path)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return nil, err
	}
	return finishLoad(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML location.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file. The file is
// created 0600 since it may carry the auth key.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# bychat configuration file")
	fmt.Fprintln(file, "# Generated by bychat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
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
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Ollama.URL != "" {
		if u, err := url.Parse(c.Ollama.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "ollama.url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Ollama.URL),
			})
		}
	}

	if c.Ollama.ChatTimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "ollama.chat_timeout_secs",
			Message: "timeout cannot be negative",
		})
	}
	if c.Ollama.ListTimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "ollama.list_timeout_secs",
			Message: "timeout cannot be negative",
		})
	}

	// Auth URL and key travel together.
	if (c.Auth.URL == "") != (c.Auth.AnonKey == "") {
		errs = append(errs, ValidationError{
			Field:   "auth",
			Message: "url and anon_key must both be set or both be empty",
		})
	}
	if c.Auth.URL != "" {
		if u, err := url.Parse(c.Auth.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "auth.url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Auth.URL),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies BYCHAT_* environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	// BYCHAT_MODEL
	if model := os.Getenv("BYCHAT_MODEL"); model != "" {
		c.DefaultModel = model
	}

	// BYCHAT_OLLAMA_URL
	if u := os.Getenv("BYCHAT_OLLAMA_URL"); u != "" {
		c.Ollama.URL = u
	}

	// BYCHAT_DATA_DIR
	if dir := os.Getenv("BYCHAT_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}

	// BYCHAT_AUTH_URL / BYCHAT_AUTH_ANON_KEY
	if u := os.Getenv("BYCHAT_AUTH_URL"); u != "" {
		c.Auth.URL = u
	}
	if key := os.Getenv("BYCHAT_AUTH_ANON_KEY"); key != "" {
		c.Auth.AnonKey = key
	}

	// BYCHAT_NO_MARKDOWN
	if plain := os.Getenv("BYCHAT_NO_MARKDOWN"); plain != "" {
		c.UI.Markdown = !(plain == "1" || strings.ToLower(plain) == "true")
	}

	// BYCHAT_NO_COLOR / NO_COLOR
	if noColor := os.Getenv("BYCHAT_NO_COLOR"); noColor != "" {
		c.UI.Color = !(noColor == "1" || strings.ToLower(noColor) == "true")
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.UI.Color = false
	}
}
