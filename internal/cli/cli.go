// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Argument parsing and command dispatch for bychat.

package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/bychat/bychat/internal/auth"
	"github.com/bychat/bychat/internal/chat"
	"github.com/bychat/bychat/internal/config"
	"github.com/bychat/bychat/internal/kvstore"
	"github.com/bychat/bychat/internal/ollama"
	"github.com/bychat/bychat/internal/store"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdSessions
	CmdModels
	CmdLogin
	CmdSignup
	CmdLogout
	CmdWhoami
	CmdTitle
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Model string
	Quiet bool
	JSON  bool

	// Remaining args after the command name, parsed per command
	// with ArgParser.
	Raw []string
}

const usageText = `bychat - local-first chat client for Ollama

Sessions persist to a local JSON store. Titles are generated by a
model on the first exchange, with a deterministic fallback when title
generation is off or fails.

Usage:
  bychat                         Interactive chat (default)
  bychat chat                    Interactive chat
  bychat sessions [subcommand]   Saved session management
  bychat models                  List installed Ollama models
  bychat login [email]           Sign in to the sync gateway
  bychat signup [email]          Create a sync gateway account
  bychat logout                  Sign out and drop the local token
  bychat whoami                  Show the signed-in account
  bychat title [subcommand]      Title generation settings
  bychat version                 Show version information
  bychat help                    Show this help

Session Commands:
  bychat sessions                List saved sessions
  bychat sessions show <id>      Print a session transcript
  bychat sessions search <text>  Search titles and transcripts
  bychat sessions export <id>    Export a session
    --format md|json             Export format (default: md)
    --output FILE                Write to file instead of stdout
  bychat sessions delete <id>    Delete a session
    --confirm                    Required confirmation flag
  bychat sessions clear          Delete all sessions
    --confirm                    Required confirmation flag

  IDs may be abbreviated to any unique prefix, such as the 8-character
  form shown by "bychat sessions".

Title Commands:
  bychat title                   Show title generation settings
  bychat title enable            Turn automatic titles on
  bychat title disable           Turn automatic titles off (fallback
                                 titles are still applied)
  bychat title set               Update settings
    --model NAME                 Dedicated title model ("" = chat model)
    --prompt TEXT                Prompt template, {message} is replaced
                                 with the first user message
  bychat title reset-prompt      Restore the built-in prompt

Interactive Commands (during chat):
  /new                Start a fresh session
  /open <id>          Load a saved session
  /sessions           List saved sessions
  /model [name]       Show or switch model
  /title              Show title settings
  /help               Show available commands
  /quit               Exit chat

Global Flags:
  -m, --model NAME    Use a specific model (overrides config)
  -q, --quiet         Minimal output
  --json              JSON output where supported

Environment:
  BYCHAT_MODEL, BYCHAT_OLLAMA_URL, BYCHAT_DATA_DIR, BYCHAT_AUTH_URL,
  BYCHAT_AUTH_ANON_KEY, BYCHAT_NO_MARKDOWN, BYCHAT_NO_COLOR, NO_COLOR

Config file: ~/.bychat/config.toml
`

// ParseArgs parses os.Args[1:] into a command and its arguments.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdChat, parsed
	}

	cmd := remaining[0]
	parsed.Raw = remaining[1:]

	switch cmd {
	case "chat", "c":
		return CmdChat, parsed

	case "sessions", "session", "s":
		return CmdSessions, parsed

	case "models", "model", "m":
		return CmdModels, parsed

	case "login", "signin":
		return CmdLogin, parsed

	case "signup", "register":
		return CmdSignup, parsed

	case "logout", "signout":
		return CmdLogout, parsed

	case "whoami":
		return CmdWhoami, parsed

	case "title", "titles":
		return CmdTitle, parsed

	case "version", "-v", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		// Unknown command: keep it in Raw so Run can report it.
		parsed.Raw = remaining
		return CmdHelp, parsed
	}
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "--json":
			parsed.JSON = true
		case "-m", "--model":
			if i+1 < len(args) {
				i++
				parsed.Model = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				parsed.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsed
}

// App bundles the wired clients every command handler needs.
type App struct {
	Config       *config.Config
	KV           *kvstore.Store
	Gateway      *ollama.Client
	Auth         *auth.Client
	Sessions     *store.SessionStore
	Orchestrator *chat.Orchestrator
}

// Run dispatches a parsed command.
func (a *App) Run(cmd Command, args Args) error {
	switch cmd {
	case CmdChat:
		return a.runChat(args)
	case CmdSessions:
		return a.handleSessions(args)
	case CmdModels:
		return a.handleModels(args)
	case CmdLogin:
		return a.handleLogin(args)
	case CmdSignup:
		return a.handleSignup(args)
	case CmdLogout:
		return a.handleLogout(args)
	case CmdWhoami:
		return a.handleWhoami(args)
	case CmdTitle:
		return a.handleTitle(args)
	case CmdVersion:
		printVersion()
		return nil
	case CmdHelp:
		if len(args.Raw) > 0 && !isHelpWord(args.Raw[0]) {
			fmt.Printf("Unknown command: %s\n\n", args.Raw[0])
		}
		fmt.Print(usageText)
		return nil
	default:
		fmt.Print(usageText)
		return nil
	}
}

func isHelpWord(s string) bool {
	switch s {
	case "help", "-h", "--help":
		return true
	}
	return false
}

func printVersion() {
	fmt.Printf("bychat %s\n", Version)
	fmt.Printf("  commit:  %s\n", GitCommit)
	fmt.Printf("  built:   %s\n", BuildDate)
	fmt.Printf("  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
