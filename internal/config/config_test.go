// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// DEFAULTS TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Ollama.URL != "http://127.0.0.1:11434" {
		t.Errorf("Ollama.URL = %q", cfg.Ollama.URL)
	}
	if cfg.Ollama.ChatTimeoutSecs != 120 {
		t.Errorf("ChatTimeoutSecs = %d", cfg.Ollama.ChatTimeoutSecs)
	}
	if cfg.Ollama.ListTimeoutSecs != 10 {
		t.Errorf("ListTimeoutSecs = %d", cfg.Ollama.ListTimeoutSecs)
	}
	if !cfg.UI.Markdown {
		t.Error("UI.Markdown should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

// =============================================================================
// LOAD/SAVE TESTS
// =============================================================================

func TestSaveAndLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DefaultModel = "llama3.2"
	cfg.Ollama.URL = "http://127.0.0.1:9999"
	cfg.Auth.URL = "https://example.supabase.co"
	cfg.Auth.AnonKey = "anon-key"

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	loaded := Default()
	if err := LoadTOML(loaded, path); err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}
	if loaded.DefaultModel != "llama3.2" {
		t.Errorf("DefaultModel = %q", loaded.DefaultModel)
	}
	if loaded.Ollama.URL != "http://127.0.0.1:9999" {
		t.Errorf("Ollama.URL = %q", loaded.Ollama.URL)
	}
	if loaded.Auth.AnonKey != "anon-key" {
		t.Errorf("Auth.AnonKey = %q", loaded.Auth.AnonKey)
	}
}

func TestSaveTOMLPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %o, want 0600", perm)
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.DefaultModel = "qwen2.5:7b"
	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	loaded := Default()
	if err := LoadJSON(loaded, path); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if loaded.DefaultModel != "qwen2.5:7b" {
		t.Errorf("DefaultModel = %q", loaded.DefaultModel)
	}
}

func TestLoadTOMLFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := `default_model = "llama3.2"`
	if err := os.WriteFile(path, []byte(partial), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{}
	if err := LoadTOML(cfg, path); err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}
	if cfg.Ollama.URL != "http://127.0.0.1:11434" {
		t.Errorf("Ollama.URL = %q, defaults not filled", cfg.Ollama.URL)
	}
	if cfg.DefaultModel != "llama3.2" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
}

func TestLoadFromPathUnsupported(t *testing.T) {
	if _, err := LoadFromPath("/tmp/config.yaml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad ollama url",
			mutate:  func(c *Config) { c.Ollama.URL = "not a url" },
			wantErr: "ollama.url",
		},
		{
			name:    "negative chat timeout",
			mutate:  func(c *Config) { c.Ollama.ChatTimeoutSecs = -1 },
			wantErr: "chat_timeout_secs",
		},
		{
			name:    "auth url without key",
			mutate:  func(c *Config) { c.Auth.URL = "https://example.supabase.co" },
			wantErr: "auth",
		},
		{
			name:    "bad auth url",
			mutate:  func(c *Config) { c.Auth.URL = "::bad"; c.Auth.AnonKey = "k" },
			wantErr: "auth.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %q, want it to mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("BYCHAT_MODEL", "env-model")
	t.Setenv("BYCHAT_OLLAMA_URL", "http://127.0.0.1:7777")
	t.Setenv("BYCHAT_DATA_DIR", "/tmp/bychat-data")
	t.Setenv("BYCHAT_NO_MARKDOWN", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.DefaultModel != "env-model" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.Ollama.URL != "http://127.0.0.1:7777" {
		t.Errorf("Ollama.URL = %q", cfg.Ollama.URL)
	}
	if cfg.DataDir != "/tmp/bychat-data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.UI.Markdown {
		t.Error("Markdown should be off")
	}
}

func TestNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.UI.Color {
		t.Error("NO_COLOR should disable color")
	}
}

// =============================================================================
// PATH TESTS
// =============================================================================

func TestDataPath(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/tmp/custom"

	path, err := cfg.DataPath()
	if err != nil {
		t.Fatalf("DataPath: %v", err)
	}
	if path != filepath.Join("/tmp/custom", "store.json") {
		t.Errorf("path = %q", path)
	}
}

func TestDataPathDefault(t *testing.T) {
	cfg := Default()

	path, err := cfg.DataPath()
	if err != nil {
		t.Fatalf("DataPath: %v", err)
	}
	if filepath.Base(path) != "store.json" {
		t.Errorf("path = %q", path)
	}
	if !strings.Contains(path, ".bychat") {
		t.Errorf("path = %q, want it under ~/.bychat", path)
	}
}
