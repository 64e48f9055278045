// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package kvstore provides the durable key-value substrate that the
// session store and settings records are built on.
//
// Values are arbitrary JSON-serializable records keyed by string. The
// whole store is a single JSON document on disk, rewritten atomically
// on every mutation, so a crash leaves either the previous or the new
// complete state.
//
// # Key Types
//
//   - Store: the open key-value store
//   - PersistenceError: error wrapper for read/write failures
//
// # Usage
//
//	kv, err := kvstore.Open(filepath.Join(dataDir, "store.json"))
//	err = kv.Set("titleSettings", settings)
//	ok, err := kv.GetJSON("titleSettings", &settings)
package kvstore
