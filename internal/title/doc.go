// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package title produces human-readable session titles.
//
// A title is generated once per session, from the first user message,
// by a dedicated single-turn completion against a configurable prompt
// and model. Generation is best-effort cosmetic metadata: it never
// fails outward. Whenever it is disabled, no model is resolvable, or
// the completion fails, the caller gets a deterministic truncation of
// the first message instead.
//
// # Key Types
//
//   - Settings: enabled flag, title model override, prompt template
//   - Generator: the pipeline itself
//   - Watcher: reloads Settings when the store file changes on disk
package title
