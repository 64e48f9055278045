// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the client for the hosted identity provider.
//
// The provider speaks the GoTrue password-grant API: sign-up and
// sign-in exchange email/password for a bearer token, sign-out
// revokes it. The issued session is persisted in the key-value store
// so the user stays signed in across restarts. Session data is
// independent of chat data; the core only needs the token value.
//
// # Key Types
//
//   - Client: HTTP client for the identity provider
//   - Session: issued token plus user identity, persisted locally
//   - ClientError: categorized error, same taxonomy as the inference client
package auth
