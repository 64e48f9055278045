// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
//
// This package implements a non-streaming client for the Ollama local
// LLM server, covering health checks, model listing, and chat
// completions.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - Message: Chat message with role and content
//   - ModelInfo: A locally available model
//   - ClientError: Categorized error with Unavailable/Gateway split
//
// # Usage
//
// Create a client and send a chat request:
//
//	client := ollama.NewClient()
//	reply, err := client.Chat(ctx, "llama3.2", []ollama.Message{
//	    {Role: "user", Content: "Hello"},
//	})
//
// # Errors
//
// Every failure is a *ClientError. ErrTypeUnavailable means the server
// never answered; ErrTypeGateway means it answered but the exchange
// failed. Callers branch with IsUnavailable and IsGatewayError.
package ollama
