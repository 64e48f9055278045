// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the bychat application.
//
// It contains the atomic file-write primitive used by every durable
// store in the project and rune-safe string truncation used for titles
// and previews.
package util
