// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bychat/bychat/internal/kvstore"
	"github.com/bychat/bychat/internal/model"
	"github.com/bychat/bychat/internal/title"
)

// sessionsKey is the store key the session collection lives under.
const sessionsKey = "chats"

// =============================================================================
// ERRORS
// =============================================================================

// ValidationError represents rejected input to a store operation.
// Use errors.Is to compare against the sentinels below.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// ErrEmptyTranscript is returned when Save is called with no messages.
var ErrEmptyTranscript = &ValidationError{Message: "transcript is empty"}

// ErrSessionNotFound is returned when Get cannot find the id.
var ErrSessionNotFound = &ValidationError{Message: "session not found"}

// =============================================================================
// SESSION STORE
// =============================================================================

// Titler produces a session title from the first user message.
// *title.Generator satisfies it.
type Titler interface {
	Generate(ctx context.Context, firstMessage, chatModel string) string
}

// SessionStore handles session persistence on top of the key-value
// store. The whole collection is a single record, replaced atomically
// on every mutation.
type SessionStore struct {
	kv     *kvstore.Store
	titler Titler
}

// NewSessionStore creates a session store.
func NewSessionStore(kv *kvstore.Store, titler Titler) *SessionStore {
	return &SessionStore{kv: kv, titler: titler}
}

// =============================================================================
// SAVE
// =============================================================================

// Save persists a session and returns its id.
//
// An empty transcript is rejected with ErrEmptyTranscript. An empty
// sessionID mints a fresh one. When isNew is true the title pipeline
// runs on the first user message; otherwise the stored title is
// carried forward verbatim, so a title is produced at most once per
// session. The record replaces any prior record for the id in place;
// an unknown id is prepended as the newest session.
func (s *SessionStore) Save(ctx context.Context, transcript []model.Message, sessionID, chatModel string, isNew bool) (string, error) {
	if len(transcript) == 0 {
		return "", ErrEmptyTranscript
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sessions, err := s.load()
	if err != nil {
		return "", err
	}

	existing := -1
	for i := range sessions {
		if sessions[i].ID == sessionID {
			existing = i
			break
		}
	}

	now := time.Now()
	sess := model.Session{
		ID:        sessionID,
		Messages:  append([]model.Message(nil), transcript...),
		Model:     chatModel,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if existing >= 0 {
		sess.Title = sessions[existing].Title
		sess.CreatedAt = sessions[existing].CreatedAt
	}

	if sess.Title == "" {
		sess.Title = s.resolveTitle(ctx, transcript, chatModel, isNew)
	}

	if existing >= 0 {
		sessions[existing] = sess
	} else {
		sessions = append([]model.Session{sess}, sessions...)
	}

	if err := s.kv.Set(sessionsKey, sessions); err != nil {
		return "", err
	}
	return sessionID, nil
}

// resolveTitle runs the title pipeline for new sessions and falls back
// to a deterministic truncation otherwise.
func (s *SessionStore) resolveTitle(ctx context.Context, transcript []model.Message, chatModel string, isNew bool) string {
	firstMessage := ""
	if first := model.FirstUserMessage(transcript); first != nil {
		firstMessage = first.Content
	}
	if isNew && s.titler != nil {
		return s.titler.Generate(ctx, firstMessage, chatModel)
	}
	return title.Fallback(firstMessage)
}

// =============================================================================
// READ
// =============================================================================

// List returns all sessions, newest-created first as stored. Display
// ordering by update time is the caller's concern.
func (s *SessionStore) List() ([]model.Session, error) {
	sessions, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]model.Session, 0, len(sessions))
	for i := range sessions {
		out = append(out, *sessions[i].Clone())
	}
	return out, nil
}

// ListMetas returns listing metadata for all sessions, most recently
// updated first.
func (s *SessionStore) ListMetas() ([]model.SessionMeta, error) {
	sessions, err := s.load()
	if err != nil {
		return nil, err
	}
	metas := make([]model.SessionMeta, 0, len(sessions))
	for i := range sessions {
		metas = append(metas, sessions[i].Meta())
	}
	model.SortByUpdated(metas)
	return metas, nil
}

// Get returns the session with the given id.
func (s *SessionStore) Get(id string) (*model.Session, error) {
	sessions, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == id {
			return sessions[i].Clone(), nil
		}
	}
	return nil, ErrSessionNotFound
}

// Search finds sessions whose title or any message content contains
// the query, case-insensitively.
func (s *SessionStore) Search(query string) ([]model.SessionMeta, error) {
	sessions, err := s.load()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []model.SessionMeta
	for i := range sessions {
		if s.matches(&sessions[i], query) {
			results = append(results, sessions[i].Meta())
		}
	}
	model.SortByUpdated(results)
	return results, nil
}

func (s *SessionStore) matches(sess *model.Session, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(sess.Title), lowerQuery) {
		return true
	}
	for _, msg := range sess.Messages {
		if strings.Contains(strings.ToLower(msg.Content), lowerQuery) {
			return true
		}
	}
	return false
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes the session with the given id. Deleting an unknown
// id is a no-op.
func (s *SessionStore) Delete(id string) error {
	sessions, err := s.load()
	if err != nil {
		return err
	}

	kept := sessions[:0]
	found := false
	for i := range sessions {
		if sessions[i].ID == id {
			found = true
			continue
		}
		kept = append(kept, sessions[i])
	}
	if !found {
		return nil
	}

	return s.kv.Set(sessionsKey, kept)
}

// Clear removes every session.
func (s *SessionStore) Clear() error {
	return s.kv.Delete(sessionsKey)
}

// =============================================================================
// HELPERS
// =============================================================================

// load reads the session collection. A missing record is an empty
// collection.
func (s *SessionStore) load() ([]model.Session, error) {
	var sessions []model.Session
	if _, err := s.kv.GetJSON(sessionsKey, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
