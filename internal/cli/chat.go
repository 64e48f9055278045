// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for bychat.
//
// Command: chat (also the default when no command is given)
//
// Examples:
//   bychat                            Start interactive chat
//   bychat chat --model llama3.2      Use a specific model
//
// Interactive commands:
//   /new                Start a fresh session
//   /open <id>          Load a saved session
//   /sessions           List saved sessions
//   /model [name]       Show or switch model
//   /title              Show title settings
//   /help               Show available commands
//   /quit               Exit chat
//   Ctrl+C              Cancel the in-flight request
//   Ctrl+D              Exit chat

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/bychat/bychat/internal/config"
	"github.com/bychat/bychat/internal/title"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history loaded from the config
// directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and releases the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// replyRenderer renders assistant replies, as markdown when enabled.
type replyRenderer struct {
	md *glamour.TermRenderer
}

func newReplyRenderer(cfg *config.Config) *replyRenderer {
	r := &replyRenderer{}
	if !cfg.UI.Markdown || !IsStdoutTTY() {
		return r
	}

	wrap := TerminalWidth()
	if wrap > 100 {
		wrap = 100
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		r.md = md
	}
	return r
}

// Render returns the content formatted for the terminal. Falls back to
// plain text when markdown rendering is off or fails.
func (r *replyRenderer) Render(content string) string {
	if r.md == nil {
		return content + "\n"
	}
	out, err := r.md.Render(content)
	if err != nil {
		return content + "\n"
	}
	return out
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// chatSession holds the interactive session state around the
// orchestrator.
type chatSession struct {
	app      *App
	input    *ChatCLI
	renderer *replyRenderer
	quiet    bool

	// cancel aborts the in-flight request on Ctrl+C. Guarded by mu:
	// the signal handler goroutine races the REPL goroutine for it.
	mu     sync.Mutex
	cancel context.CancelFunc
}

// setCancel installs (or clears) the abort hook for the in-flight
// request.
func (s *chatSession) setCancel(fn context.CancelFunc) {
	s.mu.Lock()
	s.cancel = fn
	s.mu.Unlock()
}

// abort cancels the in-flight request, if any, and reports whether
// there was one.
func (s *chatSession) abort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	s.cancel = nil
	return true
}

// runChat handles the "chat" command.
func (a *App) runChat(args Args) error {
	ctx := context.Background()
	if err := a.Gateway.CheckRunning(ctx); err != nil {
		return fmt.Errorf("Ollama is not running at %s. Start it with: ollama serve", a.Gateway.BaseURL())
	}

	session := &chatSession{
		app:      a,
		input:    NewChatCLI(),
		renderer: newReplyRenderer(a.Config),
		quiet:    args.Quiet,
	}
	defer session.input.Close()

	// Pick up title settings edits made by other processes while the
	// REPL is running.
	if watcher, err := title.NewWatcher(a.KV, func(title.Settings) {
		fmt.Println(dimStyle.Render("[Title settings reloaded]"))
	}); err == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		}
	}

	if !session.quiet {
		session.printWelcome()
	}

	// First Ctrl+C cancels the in-flight request instead of killing
	// the process.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if session.abort() {
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
		}
	}()

	for {
		input, err := session.input.ReadInput(promptStyle.Render("bychat> "))
		if err != nil {
			// liner.ErrPromptAborted on Ctrl+C, io.EOF on Ctrl+D.
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := session.handleSlashCommand(input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		if err := session.send(input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// send runs one exchange through the orchestrator and prints the
// assistant reply. Gateway failures come back as a persisted error
// message, not an error return.
func (s *chatSession) send(input string) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.setCancel(cancel)
	defer func() {
		s.setCancel(nil)
		cancel()
	}()

	reply, err := s.app.Orchestrator.Send(ctx, input)
	if err != nil && reply.Content == "" {
		return err
	}

	fmt.Println()
	fmt.Print(s.renderer.Render(reply.Content))
	fmt.Println()

	if err != nil {
		// The turn rendered but did not persist.
		fmt.Fprintf(os.Stderr, "%s session not saved: %v\n", warningStyle.Render("[Warning]"), err)
	}
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes a slash command. The bool result is
// false when the REPL should exit.
func (s *chatSession) handleSlashCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	rest := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		s.printHelp()
		return true, nil

	case "/new", "/n":
		if err := s.app.Orchestrator.Reset(); err != nil {
			return true, err
		}
		fmt.Println(commandStyle.Render("[New session]"))
		return true, nil

	case "/open", "/o":
		if len(rest) == 0 {
			return true, fmt.Errorf("usage: /open <id>")
		}
		return true, s.openSession(rest[0])

	case "/sessions", "/ls":
		listing, err := s.app.sessionListing()
		if err != nil {
			return true, err
		}
		fmt.Println(listing)
		return true, nil

	case "/model", "/m":
		return true, s.handleModelCommand(rest)

	case "/title", "/t":
		printTitleSettings(title.LoadSettings(s.app.KV))
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// openSession loads a saved session into the orchestrator.
func (s *chatSession) openSession(idOrPrefix string) error {
	id, err := s.app.resolveSessionID(idOrPrefix)
	if err != nil {
		return err
	}
	if err := s.app.Orchestrator.Open(id); err != nil {
		return err
	}

	sess, err := s.app.Sessions.Get(id)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s (%d messages)\n",
		commandStyle.Render("[Opened]"),
		sess.Title,
		sess.MessageCount())
	return nil
}

// handleModelCommand shows or switches the active model.
func (s *chatSession) handleModelCommand(rest []string) error {
	if len(rest) == 0 {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Model:"),
			commandStyle.Render(s.app.Orchestrator.Model()))
		s.printAvailableModels()
		return nil
	}

	newModel := rest[0]
	if err := s.app.Orchestrator.SetModel(newModel); err != nil {
		return err
	}
	fmt.Printf("%s Switched to model: %s\n", commandStyle.Render("[OK]"), newModel)
	return nil
}

// printAvailableModels lists installed models inline. A listing
// failure is reported as status text, never as an error.
func (s *chatSession) printAvailableModels() {
	ctx := context.Background()
	models, err := s.app.Gateway.ListModels(ctx)
	if err != nil {
		fmt.Println(dimStyle.Render("(model list unavailable: " + err.Error() + ")"))
		return
	}
	if len(models) == 0 {
		fmt.Println(dimStyle.Render("(no models installed, run: ollama pull <model>)"))
		return
	}
	fmt.Println(infoStyle.Render("Available:"))
	for _, m := range models {
		fmt.Printf("  %s\n", m.Name)
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

func (s *chatSession) printWelcome() {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("bychat interactive chat"))
	fmt.Println(dimStyle.Render(strings.Repeat("─", 30)))

	model := s.app.Orchestrator.Model()
	if model == "" {
		model = "(not set, use /model <name>)"
	}
	fmt.Printf("%s %s\n", infoStyle.Render("Model:"), commandStyle.Render(model))

	if metas, err := s.app.Sessions.ListMetas(); err == nil && len(metas) > 0 {
		fmt.Printf("%s %d saved (use /open <id>)\n",
			infoStyle.Render("Sessions:"), len(metas))
	}

	settings := title.LoadSettings(s.app.KV)
	if settings.Enabled {
		fmt.Printf("%s on\n", infoStyle.Render("Titles:"))
	} else {
		fmt.Printf("%s off (fallback titles)\n", infoStyle.Render("Titles:"))
	}

	fmt.Println(dimStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Println()
}

func (s *chatSession) printHelp() {
	fmt.Println(infoStyle.Render("Commands:"))
	fmt.Println("  /new                Start a fresh session")
	fmt.Println("  /open <id>          Load a saved session")
	fmt.Println("  /sessions           List saved sessions")
	fmt.Println("  /model [name]       Show or switch model")
	fmt.Println("  /title              Show title settings")
	fmt.Println("  /quit               Exit chat")
}

// printTitleSettings prints the title generation settings.
func printTitleSettings(settings title.Settings) {
	state := "enabled"
	if !settings.Enabled {
		state = "disabled"
	}
	fmt.Printf("%s %s\n", infoStyle.Render("Titles:"), state)

	model := settings.Model
	if model == "" {
		model = "(chat model)"
	}
	fmt.Printf("%s %s\n", infoStyle.Render("Model:"), model)

	prompt := settings.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = title.DefaultPrompt
	}
	fmt.Printf("%s\n%s\n", infoStyle.Render("Prompt:"), prompt)
}
