// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package kvstore

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/bychat/bychat/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// PersistenceError represents a failure reading or writing the
// underlying store file.
type PersistenceError struct {
	Op      string // "open", "set", "delete"
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return e.Op + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Op + ": " + e.Message
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// STORE
// =============================================================================

// Store is a durable mapping from string keys to JSON values, backed
// by a single file. All mutations rewrite the file atomically.
//
// Store is safe for concurrent use, though the application is
// single-writer by design.
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

// Open loads the store at path, creating an empty one if the file does
// not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, &PersistenceError{Op: "open", Message: "failed to read store file", Cause: err}
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, &PersistenceError{Op: "open", Message: "failed to decode store file", Cause: err}
		}
	}

	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the backing file, replacing the in-memory state.
// Used when another process may have rewritten the file.
func (s *Store) Reload() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.data = make(map[string]json.RawMessage)
			s.mu.Unlock()
			return nil
		}
		return &PersistenceError{Op: "open", Message: "failed to read store file", Cause: err}
	}

	data := make(map[string]json.RawMessage)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return &PersistenceError{Op: "open", Message: "failed to decode store file", Cause: err}
		}
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Get returns the raw JSON value for key, and whether it exists.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false
	}
	// Copy so callers cannot mutate the stored value.
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out, true
}

// GetJSON unmarshals the value for key into into. The boolean reports
// whether the key exists; a missing key leaves into untouched.
func (s *Store) GetJSON(key string, into any) (bool, error) {
	raw, ok := s.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return true, &PersistenceError{Op: "get", Message: "failed to decode value for key " + key, Cause: err}
	}
	return true, nil
}

// Set stores value under key and persists the whole store.
func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return &PersistenceError{Op: "set", Message: "failed to encode value for key " + key, Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.data[key]
	s.data[key] = raw

	if err := s.flushLocked(); err != nil {
		// Roll back so memory matches disk.
		if existed {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// Delete removes key and persists. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.data[key]
	if !existed {
		return nil
	}
	delete(s.data, key)

	if err := s.flushLocked(); err != nil {
		s.data[key] = prev
		return err
	}
	return nil
}

// Keys returns all keys currently in the store.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// flushLocked writes the current state to disk. Caller holds s.mu.
func (s *Store) flushLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "set", Message: "failed to encode store", Cause: err}
	}
	if err := util.AtomicWriteFile(s.path, raw, 0600); err != nil {
		return &PersistenceError{Op: "set", Message: "failed to write store file", Cause: err}
	}
	return nil
}
