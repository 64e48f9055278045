// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is a persisted conversation.
//
// ID is assigned once at creation and immutable; Title is set exactly
// once by the title pipeline and copied forward on every later save;
// Messages are append-only conversation order.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionMeta holds lightweight metadata for listing.
type SessionMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Model        string    `json:"model"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Preview      string    `json:"preview"`
}

// Meta returns the listing metadata for the session.
func (s *Session) Meta() SessionMeta {
	return SessionMeta{
		ID:           s.ID,
		Title:        s.Title,
		Model:        s.Model,
		MessageCount: len(s.Messages),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Preview:      s.Preview(),
	}
}

// Preview returns a short single-line preview from the first user
// message, or empty if the session has none.
func (s *Session) Preview() string {
	first := FirstUserMessage(s.Messages)
	if first == nil {
		return ""
	}
	return first.Preview(80)
}

// MessageCount returns the number of messages in the session.
func (s *Session) MessageCount() int {
	return len(s.Messages)
}

// Clone returns a deep copy of the session. The store hands out clones
// so callers cannot mutate persisted state through shared slices.
func (s *Session) Clone() *Session {
	clone := *s
	clone.Messages = make([]Message, len(s.Messages))
	copy(clone.Messages, s.Messages)
	return &clone
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders the session as a Markdown document with role
// labels and timestamps.
func (s *Session) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# " + s.title() + "\n\n")
	sb.WriteString("Created: " + s.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("Model: " + s.Model + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range s.Messages {
		role := "**User**"
		if msg.Role == RoleAssistant {
			role = "**Assistant**"
		}
		sb.WriteString(role + " (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// ExportJSON renders the session as pretty-printed JSON.
func (s *Session) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func (s *Session) title() string {
	if s.Title != "" {
		return s.Title
	}
	return "Untitled session"
}

// =============================================================================
// HELPERS
// =============================================================================

// SortByUpdated orders metas most-recently-updated first, the display
// order the session list uses.
func SortByUpdated(metas []SessionMeta) {
	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
}
