// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and messages.
//
// # Key Types
//
//   - Session: a persisted conversation with title, model, and timestamps
//   - Message: a single user or assistant turn
//   - SessionMeta: lightweight metadata for listing
//
// The JSON field names match the record format the store persists, so
// sessions written by earlier builds load unchanged.
package model
