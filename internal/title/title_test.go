// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package title

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bychat/bychat/internal/kvstore"
	"github.com/bychat/bychat/internal/ollama"
)

// fakeCompleter returns a canned reply or error and records the call.
type fakeCompleter struct {
	reply    string
	err      error
	model    string
	messages []ollama.Message
	calls    int
}

func (f *fakeCompleter) Chat(ctx context.Context, model string, messages []ollama.Message) (string, error) {
	f.calls++
	f.model = model
	f.messages = messages
	return f.reply, f.err
}

func newTestStore(t *testing.T) *kvstore.Store {
	t.Helper()
	s, err := kvstore.Open(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

// =============================================================================
// SETTINGS TESTS
// =============================================================================

func TestLoadSettingsDefaults(t *testing.T) {
	store := newTestStore(t)

	s := LoadSettings(store)
	if !s.Enabled {
		t.Error("default Enabled should be true")
	}
	if s.Model != "" {
		t.Errorf("default Model = %q, want empty", s.Model)
	}
	if s.Prompt != DefaultPrompt {
		t.Errorf("default Prompt = %q", s.Prompt)
	}
}

func TestSaveAndLoadSettings(t *testing.T) {
	store := newTestStore(t)

	want := Settings{Enabled: false, Model: "llama3.2", Prompt: "Title: {message}"}
	if err := SaveSettings(store, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got := LoadSettings(store)
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestDefaultPromptHasPlaceholder(t *testing.T) {
	if !strings.Contains(DefaultPrompt, "{message}") {
		t.Error("DefaultPrompt must contain {message}")
	}
}

// =============================================================================
// GENERATOR TESTS
// =============================================================================

func TestGenerateSuccess(t *testing.T) {
	store := newTestStore(t)
	fc := &fakeCompleter{reply: `"Trip Planning Ideas"`}
	g := NewGenerator(store, fc)

	got := g.Generate(context.Background(), "Help me plan a trip to Japan", "llama3.2")
	if got != "Trip Planning Ideas" {
		t.Errorf("title = %q", got)
	}
	if fc.model != "llama3.2" {
		t.Errorf("model = %q, want chat model", fc.model)
	}
	if len(fc.messages) != 1 || fc.messages[0].Role != "user" {
		t.Fatalf("messages = %+v", fc.messages)
	}
	if !strings.Contains(fc.messages[0].Content, "Help me plan a trip to Japan") {
		t.Errorf("prompt missing message: %q", fc.messages[0].Content)
	}
	if strings.Contains(fc.messages[0].Content, "{message}") {
		t.Errorf("placeholder not substituted: %q", fc.messages[0].Content)
	}
}

func TestGenerateDisabled(t *testing.T) {
	store := newTestStore(t)
	SaveSettings(store, Settings{Enabled: false})
	fc := &fakeCompleter{reply: "unused"}
	g := NewGenerator(store, fc)

	got := g.Generate(context.Background(), "Hello world", "llama3.2")
	if got != "Hello world" {
		t.Errorf("title = %q, want fallback", got)
	}
	if fc.calls != 0 {
		t.Errorf("completer called %d times while disabled", fc.calls)
	}
}

func TestGenerateNoModel(t *testing.T) {
	store := newTestStore(t)
	fc := &fakeCompleter{reply: "unused"}
	g := NewGenerator(store, fc)

	got := g.Generate(context.Background(), "Hello world", "")
	if got != "Hello world" {
		t.Errorf("title = %q, want fallback", got)
	}
	if fc.calls != 0 {
		t.Errorf("completer called %d times with no model", fc.calls)
	}
}

func TestGenerateTitleModelOverridesChatModel(t *testing.T) {
	store := newTestStore(t)
	SaveSettings(store, Settings{Enabled: true, Model: "qwen2.5:0.5b", Prompt: DefaultPrompt})
	fc := &fakeCompleter{reply: "Small Talk"}
	g := NewGenerator(store, fc)

	g.Generate(context.Background(), "hi", "llama3.2")
	if fc.model != "qwen2.5:0.5b" {
		t.Errorf("model = %q, want the title override", fc.model)
	}
}

func TestGenerateBlankPromptUsesDefault(t *testing.T) {
	store := newTestStore(t)
	SaveSettings(store, Settings{Enabled: true, Prompt: "   "})
	fc := &fakeCompleter{reply: "A Title"}
	g := NewGenerator(store, fc)

	g.Generate(context.Background(), "some message", "llama3.2")
	if !strings.Contains(fc.messages[0].Content, "max 6 words") {
		t.Errorf("blank prompt should fall back to the default, got %q", fc.messages[0].Content)
	}
}

func TestGenerateCompleterFailure(t *testing.T) {
	store := newTestStore(t)
	fc := &fakeCompleter{err: errors.New("connection refused")}
	g := NewGenerator(store, fc)

	msg := strings.Repeat("a", 40)
	got := g.Generate(context.Background(), msg, "llama3.2")
	want := strings.Repeat("a", 30) + "..."
	if got != want {
		t.Errorf("title = %q, want fallback %q", got, want)
	}
}

func TestGenerateEmptyReplyFallsBack(t *testing.T) {
	store := newTestStore(t)
	fc := &fakeCompleter{reply: `""`}
	g := NewGenerator(store, fc)

	got := g.Generate(context.Background(), "Hello", "llama3.2")
	if got != "Hello" {
		t.Errorf("title = %q, want fallback", got)
	}
}

// =============================================================================
// FALLBACK AND CLEAN TESTS
// =============================================================================

func TestFallback(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "Hello", "Hello"},
		{"exactly 30", strings.Repeat("x", 30), strings.Repeat("x", 30)},
		{"truncated", strings.Repeat("x", 31), strings.Repeat("x", 30) + "..."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fallback(tt.in); got != tt.want {
				t.Errorf("Fallback(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Trip Planning", "Trip Planning"},
		{"whitespace", "  Trip Planning \n", "Trip Planning"},
		{"straight double quotes", `"Trip Planning"`, "Trip Planning"},
		{"straight single quotes", "'Trip Planning'", "Trip Planning"},
		{"curly double quotes", "“Trip Planning”", "Trip Planning"},
		{"curly single quotes", "‘Trip Planning’", "Trip Planning"},
		{"only one pair stripped", `""Trip""`, `"Trip"`},
		{"interior quotes kept", `Bob's "Plan"`, `Bob's "Plan`},
		{"over fifty runes", strings.Repeat("t", 60), strings.Repeat("t", 50)},
		{"lone quote", `"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcherReloadsOnRewrite(t *testing.T) {
	store := newTestStore(t)
	SaveSettings(store, Settings{Enabled: true, Prompt: DefaultPrompt})

	changed := make(chan Settings, 1)
	w, err := NewWatcher(store, func(s Settings) {
		select {
		case changed <- s:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// A second store handle on the same file plays the part of an
	// external editor.
	other, err := kvstore.Open(store.Path())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := SaveSettings(other, Settings{Enabled: false, Model: "phi3"}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	select {
	case s := <-changed:
		if s.Enabled || s.Model != "phi3" {
			t.Errorf("reloaded settings = %+v", s)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire")
	}
}
