// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// titlecmd.go - Title generation settings for the bychat CLI.
//
// Command: title
//
// Examples:
//   bychat title                              Show settings
//   bychat title enable                       Turn automatic titles on
//   bychat title disable                      Turn automatic titles off
//   bychat title set --model llama3.2         Use a dedicated title model
//   bychat title set --prompt "Name this chat: {message}"
//   bychat title reset-prompt                 Restore the built-in prompt

package cli

import (
	"fmt"
	"strings"

	"github.com/bychat/bychat/internal/title"
)

// handleTitle dispatches the "title" subcommands.
func (a *App) handleTitle(args Args) error {
	parser := NewArgParser(args.Raw)
	settings := title.LoadSettings(a.KV)

	switch parser.Subcommand() {
	case "", "show":
		printTitleSettings(settings)
		return nil

	case "enable", "on":
		settings.Enabled = true
		if err := title.SaveSettings(a.KV, settings); err != nil {
			return err
		}
		fmt.Println(commandStyle.Render("[OK] Automatic titles enabled"))
		return nil

	case "disable", "off":
		settings.Enabled = false
		if err := title.SaveSettings(a.KV, settings); err != nil {
			return err
		}
		fmt.Println(commandStyle.Render("[OK] Automatic titles disabled (fallback titles still apply)"))
		return nil

	case "set":
		return a.setTitleSettings(parser, settings)

	case "reset-prompt", "reset":
		settings.Prompt = title.DefaultPrompt
		if err := title.SaveSettings(a.KV, settings); err != nil {
			return err
		}
		fmt.Println(commandStyle.Render("[OK] Prompt restored to the built-in default"))
		return nil

	default:
		return fmt.Errorf("unknown title subcommand: %s (try: show, enable, disable, set, reset-prompt)", parser.Subcommand())
	}
}

func (a *App) setTitleSettings(parser *ArgParser, settings title.Settings) error {
	changed := false

	if model := parser.Flag("model"); model != "" {
		if model == "none" || model == "default" {
			model = ""
		}
		settings.Model = model
		changed = true
	}

	if prompt := parser.Flag("prompt"); prompt != "" {
		if !strings.Contains(prompt, "{message}") {
			fmt.Println(warningStyle.Render("[Warning] Prompt has no {message} placeholder; the first user message will not be substituted"))
		}
		settings.Prompt = prompt
		changed = true
	}

	if !changed {
		return fmt.Errorf("nothing to set: use --model NAME and/or --prompt TEXT")
	}

	if err := title.SaveSettings(a.KV, settings); err != nil {
		return err
	}
	fmt.Println(commandStyle.Render("[OK] Title settings updated"))
	printTitleSettings(settings)
	return nil
}
