// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the per-turn orchestration loop.
//
// The Orchestrator owns the in-memory transcript for the currently
// open session and drives each send through an explicit state machine:
//
//	Idle -> Sending -> (Completed | Failed) -> Idle
//
// One send is in flight at a time. Each turn persists twice: once
// after the user message is appended (triggering title generation for
// new sessions), and once after the assistant message or error
// placeholder is appended. A gateway failure never escapes Send; it
// becomes a visible assistant-role error message in the transcript.
//
// # Key Types
//
//   - Orchestrator: the state machine and transcript owner
//   - Completer: the inference call the orchestrator depends on
package chat
