// Aira TUI - a terminal chat companion with voice mode.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aira-tui/internal/cli"
	"github.com/jeranaias/aira-tui/internal/config"
	"github.com/jeranaias/aira-tui/internal/keystore"
	"github.com/jeranaias/aira-tui/internal/storage"
	"github.com/jeranaias/aira-tui/internal/ui"
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
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI()
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdSetup:
		err = cli.HandleSetup(args)
	case cli.CmdHistory:
		err = cli.HandleHistory(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintHelp()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "aira: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the full-screen application.
func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.SetGlobal(cfg)

	// The TUI owns the terminal; logs go to a file instead of stderr.
	closeLog := setupLogging()
	defer closeLog()

	keys := keystore.New()
	if cfg.Storage.CredentialPath != "" {
		keys = keystore.NewWithPath(cfg.Storage.CredentialPath)
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open message store: %w", err)
	}
	defer store.Close()

	// Hot-reload config edits while the app runs. Best effort; the app
	// works fine without the watcher.
	if path, err := config.Path(); err == nil {
		watcher, werr := config.NewWatcher(path, func(next *config.Config) {
			slog.Info("configuration reloaded")
		})
		if werr == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	app := ui.NewApp(cfg, keys, store)
	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

func openStore(cfg *config.Config) (*storage.MessageStore, error) {
	if cfg.Storage.DatabasePath != "" {
		return storage.Open(cfg.Storage.DatabasePath)
	}
	return storage.OpenDefault()
}

// setupLogging routes slog to ~/.aira/aira.log and returns a closer.
// On any failure logging is discarded rather than corrupting the screen.
func setupLogging() func() {
	discard := func() {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	}

	dir, err := config.Dir()
	if err != nil {
		discard()
		return func() {}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		discard()
		return func() {}
	}

	path := filepath.Join(dir, "aira.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		discard()
		return func() {}
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(f, nil)))
	return func() { f.Close() }
}
