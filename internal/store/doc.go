// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides session persistence for ByChat.
//
// SessionStore owns the durable collection of sessions, kept as a
// single record in the key-value store. It enforces session identity,
// message ordering, and title-once semantics, and delegates title
// production to the title pipeline on first save.
//
// # Key Types
//
//   - SessionStore: create/read/update/delete/list over the collection
//   - ValidationError: rejected input, e.g. an empty transcript
//
// # Usage
//
//	ss := store.NewSessionStore(kv, titler)
//	id, err := ss.Save(ctx, transcript, "", "llama3.2", true)
package store
