// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != "http://127.0.0.1:11434" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.ChatTimeout != 120*time.Second {
		t.Errorf("ChatTimeout = %v", cfg.ChatTimeout)
	}
	if cfg.ListTimeout != 10*time.Second {
		t.Errorf("ListTimeout = %v", cfg.ListTimeout)
	}
}

func TestNewClientWithConfigFillsDefaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: "http://example:1234"})

	if c.config.BaseURL != "http://example:1234" {
		t.Errorf("BaseURL = %q", c.config.BaseURL)
	}
	if c.config.ChatTimeout != 120*time.Second {
		t.Errorf("ChatTimeout = %v", c.config.ChatTimeout)
	}

	if NewClientWithConfig(nil) == nil {
		t.Error("nil config should produce a default client")
	}
}

// =============================================================================
// HEALTH CHECK TESTS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	if err := c.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning: %v", err)
	}
}

func TestCheckRunningUnreachable(t *testing.T) {
	// Port 1 is never listening.
	c := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1", ListTimeout: time.Second})

	err := c.CheckRunning(context.Background())
	if !IsUnavailable(err) {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

// =============================================================================
// MODEL LISTING TESTS
// =============================================================================

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ListModelsResponse{
			Models: []ModelInfo{
				{Name: "llama3.2", Size: 2000000000},
				{Name: "qwen2.5:7b", Size: 4700000000},
			},
		})
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("len = %d, want 2", len(models))
	}
	if models[0].Name != "llama3.2" {
		t.Errorf("Name = %q", models[0].Name)
	}
}

func TestListModelsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	_, err := c.ListModels(context.Background())
	if !IsGatewayError(err) {
		t.Errorf("expected gateway error, got %v", err)
	}
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("expected stream:false")
		}
		if req.Model != "llama3.2" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "Hello" {
			t.Errorf("messages = %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(ChatResponse{
			Model:   req.Model,
			Message: Message{Role: "assistant", Content: "Hi there"},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	reply, err := c.Chat(context.Background(), "llama3.2", []Message{{Role: "user", Content: "Hello"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "Hi there" {
		t.Errorf("reply = %q", reply)
	}
}

func TestChatServerErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ServerError{Error: "model requires more memory"})
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	_, err := c.Chat(context.Background(), "llama3.2", []Message{{Role: "user", Content: "Hi"}})
	if !IsGatewayError(err) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if err.Error() != "model requires more memory" {
		t.Errorf("error = %q, want the server's detail", err.Error())
	}
}

func TestChatModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(ServerError{Error: `model "nope" not found`})
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	_, err := c.Chat(context.Background(), "nope", []Message{{Role: "user", Content: "Hi"}})
	if !IsModelNotFound(err) {
		t.Errorf("expected model not found, got %v", err)
	}
}

func TestChatUnreachable(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1", ChatTimeout: time.Second})

	_, err := c.Chat(context.Background(), "llama3.2", []Message{{Role: "user", Content: "Hi"}})
	if !IsUnavailable(err) {
		t.Errorf("expected unavailable, got %v", err)
	}
}

func TestChatNoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	c.Chat(context.Background(), "llama3.2", []Message{{Role: "user", Content: "Hi"}})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestClientErrorUnwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &ClientError{Type: ErrTypeGateway, Message: "failed", Cause: cause}

	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if err.Error() != "failed: context deadline exceeded" {
		t.Errorf("Error() = %q", err.Error())
	}
}
