// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package title

import (
	"github.com/bychat/bychat/internal/kvstore"
)

// settingsKey is the store key the settings record lives under.
const settingsKey = "titleSettings"

// DefaultPrompt is the built-in title prompt template. {message} is
// replaced with the first user message of the session.
const DefaultPrompt = `Generate a short, concise title (max 6 words) for this conversation based on the first message. Only respond with the title, no quotes or extra text.

First message: {message}`

// Settings configures title generation. Persisted independently of
// sessions so it survives restarts.
type Settings struct {
	Enabled bool   `json:"enabled"`
	Model   string `json:"model"`  // empty = use the session's chat model
	Prompt  string `json:"prompt"` // template with a {message} placeholder
}

// DefaultSettings returns the built-in defaults: enabled, no model
// override, default prompt.
func DefaultSettings() Settings {
	return Settings{
		Enabled: true,
		Model:   "",
		Prompt:  DefaultPrompt,
	}
}

// LoadSettings reads the settings record from the store. A missing or
// undecodable record yields the defaults.
func LoadSettings(store *kvstore.Store) Settings {
	var s Settings
	ok, err := store.GetJSON(settingsKey, &s)
	if !ok || err != nil {
		return DefaultSettings()
	}
	return s
}

// SaveSettings persists the settings record.
func SaveSettings(store *kvstore.Store, s Settings) error {
	return store.Set(settingsKey, s)
}
