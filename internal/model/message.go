// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/bychat/bychat/internal/ollama"
	"github.com/bychat/bychat/internal/util"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a session's transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage creates a user message with a fresh ID.
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message with a fresh ID.
func NewAssistantMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Preview returns the message content collapsed to one line and
// truncated to maxRunes.
func (m Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.OneLine(m.Content), maxRunes)
}

// ToOllama converts a transcript to the wire format the inference
// gateway expects.
func ToOllama(messages []Message) []ollama.Message {
	out := make([]ollama.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, ollama.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// FirstUserMessage returns the first user-role message in a
// transcript, or nil if there is none.
func FirstUserMessage(messages []Message) *Message {
	for i := range messages {
		if messages[i].Role == RoleUser {
			return &messages[i]
		}
	}
	return nil
}
