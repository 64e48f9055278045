// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Saved session management for the bychat CLI.
//
// Command: sessions
//
// Examples:
//   bychat sessions                       List saved sessions
//   bychat sessions show a1b2c3d4         Print a transcript
//   bychat sessions search deploy         Search titles and transcripts
//   bychat sessions export a1b2 --format=json --output chat.json
//   bychat sessions delete a1b2 --confirm
//   bychat sessions clear --confirm

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/bychat/bychat/internal/model"
	"github.com/bychat/bychat/internal/store"
)

// handleSessions dispatches the "sessions" subcommands.
func (a *App) handleSessions(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list", "ls":
		listing, err := a.sessionListing()
		if err != nil {
			return err
		}
		fmt.Println(listing)
		return nil

	case "show":
		return a.showSession(parser.Positional(1))

	case "search", "find":
		query := strings.Join(parser.PositionalFrom(1), " ")
		return a.searchSessions(query)

	case "export":
		return a.exportSession(parser)

	case "delete", "rm":
		return a.deleteSession(parser)

	case "clear", "delete-all":
		return a.clearSessions(parser)

	default:
		return fmt.Errorf("unknown sessions subcommand: %s (try: list, show, search, export, delete, clear)", parser.Subcommand())
	}
}

// sessionListing renders the session table shared by "sessions list"
// and the REPL's /sessions command.
func (a *App) sessionListing() (string, error) {
	metas, err := a.Sessions.ListMetas()
	if err != nil {
		return "", err
	}
	return store.FormatSessionList(metas), nil
}

// resolveSessionID expands an id prefix (such as the 8-character form
// the listing shows) into the full session id.
func (a *App) resolveSessionID(idOrPrefix string) (string, error) {
	if idOrPrefix == "" {
		return "", fmt.Errorf("session id required")
	}

	sessions, err := a.Sessions.List()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, sess := range sessions {
		if sess.ID == idOrPrefix {
			return sess.ID, nil
		}
		if strings.HasPrefix(sess.ID, idOrPrefix) {
			matches = append(matches, sess.ID)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no session matches %q: %w", idOrPrefix, store.ErrSessionNotFound)
	default:
		return "", fmt.Errorf("session id %q is ambiguous (%d matches)", idOrPrefix, len(matches))
	}
}

func (a *App) showSession(idOrPrefix string) error {
	id, err := a.resolveSessionID(idOrPrefix)
	if err != nil {
		return err
	}
	sess, err := a.Sessions.Get(id)
	if err != nil {
		return err
	}

	fmt.Println(welcomeStyle.Render(sess.Title))
	fmt.Printf("%s %s\n", infoStyle.Render("ID:"), sess.ID)
	fmt.Printf("%s %s\n", infoStyle.Render("Created:"), sess.CreatedAt.Format("2006-01-02 15:04"))
	if sess.Model != "" {
		fmt.Printf("%s %s\n", infoStyle.Render("Model:"), sess.Model)
	}
	fmt.Println(dimStyle.Render(strings.Repeat("─", 40)))

	for _, msg := range sess.Messages {
		label := "User"
		if msg.Role == model.RoleAssistant {
			label = "Assistant"
		}
		fmt.Printf("%s %s\n%s\n\n",
			promptStyle.Render(label),
			dimStyle.Render(msg.Timestamp.Format("15:04")),
			msg.Content)
	}
	return nil
}

func (a *App) searchSessions(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("usage: bychat sessions search <text>")
	}
	metas, err := a.Sessions.Search(query)
	if err != nil {
		return err
	}
	fmt.Println(store.FormatSessionList(metas))
	return nil
}

func (a *App) exportSession(parser *ArgParser) error {
	id, err := a.resolveSessionID(parser.Positional(1))
	if err != nil {
		return err
	}
	sess, err := a.Sessions.Get(id)
	if err != nil {
		return err
	}

	format := parser.FlagOrDefault("format", "md")
	var data []byte
	switch format {
	case "md", "markdown":
		data = []byte(sess.ExportMarkdown())
	case "json":
		data, err = sess.ExportJSON()
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format: %s (use md or json)", format)
	}

	output := parser.Flag("output")
	if output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0600); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Printf("%s Exported to %s\n", commandStyle.Render("[OK]"), output)
	return nil
}

func (a *App) deleteSession(parser *ArgParser) error {
	id, err := a.resolveSessionID(parser.Positional(1))
	if err != nil {
		return err
	}
	if !parser.BoolFlag("confirm") {
		return fmt.Errorf("deleting a session requires --confirm")
	}
	if err := a.Sessions.Delete(id); err != nil {
		return err
	}
	fmt.Printf("%s Deleted session %s\n", commandStyle.Render("[OK]"), id[:8])
	return nil
}

func (a *App) clearSessions(parser *ArgParser) error {
	if !parser.BoolFlag("confirm") {
		return fmt.Errorf("clearing all sessions requires --confirm")
	}
	if err := a.Sessions.Clear(); err != nil {
		return err
	}
	fmt.Println(commandStyle.Render("[OK] All sessions deleted"))
	return nil
}
