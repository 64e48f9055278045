// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package title

import (
	"context"
	"strings"

	"github.com/bychat/bychat/internal/kvstore"
	"github.com/bychat/bychat/internal/ollama"
	"github.com/bychat/bychat/internal/util"
)

// fallbackRunes is how much of the first message the fallback title keeps.
const fallbackRunes = 30

// maxTitleRunes caps a model-produced title.
const maxTitleRunes = 50

// Completer runs a single-turn completion. *ollama.Client satisfies it.
type Completer interface {
	Chat(ctx context.Context, model string, messages []ollama.Message) (string, error)
}

// Generator produces session titles. Settings are re-read from the
// store on every call so external edits take effect immediately.
type Generator struct {
	store     *kvstore.Store
	completer Completer
}

// NewGenerator creates a title generator backed by the given settings
// store and completion client.
func NewGenerator(store *kvstore.Store, completer Completer) *Generator {
	return &Generator{store: store, completer: completer}
}

// Generate returns a title for a session whose first user message is
// firstMessage, sent with chatModel. It never returns an error: any
// failure yields the fallback title, a truncation of firstMessage.
func (g *Generator) Generate(ctx context.Context, firstMessage, chatModel string) string {
	settings := LoadSettings(g.store)

	if !settings.Enabled {
		return Fallback(firstMessage)
	}

	// Explicit title model takes precedence over the session's model.
	model := settings.Model
	if model == "" {
		model = chatModel
	}
	if model == "" {
		return Fallback(firstMessage)
	}

	prompt := strings.TrimSpace(settings.Prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}
	prompt = strings.Replace(prompt, "{message}", firstMessage, 1)

	reply, err := g.completer.Chat(ctx, model, []ollama.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return Fallback(firstMessage)
	}

	cleaned := Clean(reply)
	if cleaned == "" {
		return Fallback(firstMessage)
	}
	return cleaned
}

// Fallback returns the deterministic no-model title: the first 30
// runes of the message, with "..." appended if it was cut.
func Fallback(firstMessage string) string {
	return util.TruncateTitle(firstMessage, fallbackRunes)
}

// quoteChars are the straight and curly quote characters stripped
// from a model-produced title.
const quoteChars = "\"'“”‘’"

// Clean normalizes a model-produced title: trim whitespace, strip at
// most one leading and one trailing quote character (straight or
// curly), and cap at 50 runes.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)

	runes := []rune(s)
	if len(runes) > 0 && strings.ContainsRune(quoteChars, runes[0]) {
		runes = runes[1:]
	}
	if len(runes) > 0 && strings.ContainsRune(quoteChars, runes[len(runes)-1]) {
		runes = runes[:len(runes)-1]
	}

	s = strings.TrimSpace(string(runes))

	runes = []rune(s)
	if len(runes) > maxTitleRunes {
		s = string(runes[:maxTitleRunes])
	}
	return s
}
