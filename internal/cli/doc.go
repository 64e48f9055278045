// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the bychat command line surface.
//
// ParseArgs maps os.Args onto a Command, and App.Run dispatches it to
// a handler. The "chat" command is the default and runs a liner-based
// REPL with markdown rendering of assistant replies; the remaining
// commands manage saved sessions, installed models, the auth gateway
// account, and title generation settings.
//
// Output styling goes through the shared lipgloss styles in styles.go,
// which degrade to plain text for piped output and NO_COLOR.
package cli
