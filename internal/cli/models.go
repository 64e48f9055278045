// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// models.go - Installed model listing for the bychat CLI.
//
// Command: models
//
// Examples:
//   bychat models             List installed Ollama models
//   bychat models --json      JSON output

package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bychat/bychat/internal/util"
)

// handleModels lists the models installed on the Ollama server.
func (a *App) handleModels(args Args) error {
	ctx := context.Background()
	models, err := a.Gateway.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("could not list models: %w", err)
	}

	if args.JSON {
		data, err := json.MarshalIndent(models, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(models) == 0 {
		fmt.Println("No models installed. Pull one with: ollama pull llama3.2")
		return nil
	}

	fmt.Printf("%s%s%s\n",
		util.PadWidth("Name", 32),
		util.PadWidth("Size", 12),
		"Modified")
	fmt.Println(dimStyle.Render("------------------------------------------------------------"))

	defaultModel := a.Config.DefaultModel
	for _, m := range models {
		name := m.Name
		if name == defaultModel {
			name += " *"
		}
		fmt.Printf("%s%s%s\n",
			util.PadWidth(util.TruncateWidth(name, 30), 32),
			util.PadWidth(formatBytes(m.Size), 12),
			m.ModifiedAt.Format("2006-01-02 15:04"))
	}
	if defaultModel != "" {
		fmt.Println(dimStyle.Render("* default model"))
	}
	return nil
}

// formatBytes renders a byte count in a human unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
