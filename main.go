// bychat - local-first chat client for Ollama with persisted sessions.
//
// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bychat/bychat/internal/auth"
	"github.com/bychat/bychat/internal/chat"
	"github.com/bychat/bychat/internal/cli"
	"github.com/bychat/bychat/internal/config"
	"github.com/bychat/bychat/internal/kvstore"
	"github.com/bychat/bychat/internal/ollama"
	"github.com/bychat/bychat/internal/store"
	"github.com/bychat/bychat/internal/title"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.ParseArgs(os.Args[1:])

	app, err := buildApp(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildApp loads configuration and wires the clients, store, and
// orchestrator every command runs against.
func buildApp(args cli.Args) (*cli.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cli.ApplyUIPreferences(cfg)

	dataPath, err := cfg.DataPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0700); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	kv, err := kvstore.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	gateway := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:     cfg.Ollama.URL,
		ChatTimeout: time.Duration(cfg.Ollama.ChatTimeoutSecs) * time.Second,
		ListTimeout: time.Duration(cfg.Ollama.ListTimeoutSecs) * time.Second,
	})

	authClient := auth.NewClient(auth.ClientConfig{
		BaseURL: cfg.Auth.URL,
		AnonKey: cfg.Auth.AnonKey,
	}, kv)

	titler := title.NewGenerator(kv, gateway)
	sessions := store.NewSessionStore(kv, titler)
	orchestrator := chat.NewOrchestrator(sessions, gateway)

	if model := modelFor(args, cfg); model != "" {
		if err := orchestrator.SetModel(model); err != nil {
			return nil, err
		}
	}

	return &cli.App{
		Config:       cfg,
		KV:           kv,
		Gateway:      gateway,
		Auth:         authClient,
		Sessions:     sessions,
		Orchestrator: orchestrator,
	}, nil
}

// modelFor resolves the active model: CLI flag wins over config.
func modelFor(args cli.Args, cfg *config.Config) string {
	if args.Model != "" {
		return args.Model
	}
	return cfg.DefaultModel
}
