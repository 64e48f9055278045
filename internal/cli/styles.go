// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared lipgloss styles for all bychat commands.

package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bychat/bychat/internal/config"
)

// init configures lipgloss based on terminal capabilities so piped
// output stays free of escape sequences.
func init() {
	lipgloss.SetColorProfile(colorProfile())
}

// ApplyUIPreferences applies config-driven display settings on top of
// the environment detection done at init.
func ApplyUIPreferences(cfg *config.Config) {
	if !cfg.UI.Color {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

var (
	// promptStyle renders the REPL input prompt.
	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // Cyan

	// welcomeStyle renders the chat welcome banner.
	welcomeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")) // Purple

	// infoStyle renders labels and secondary text.
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // Light gray

	// commandStyle renders command names and confirmed values.
	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // Green

	// errorStyle renders error prefixes.
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // Red

	// warningStyle renders warnings and degraded states.
	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Amber

	// dimStyle renders hints and separators.
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim gray
)
