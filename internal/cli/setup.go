// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - API key entry for the terminal, outside the TUI.
//
// Command: setup
// Aliases: key
//
// Reads the key with echo disabled, probes the live API with it, and
// persists it only after the probe succeeds.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeranaias/aira-tui/internal/config"
	"github.com/jeranaias/aira-tui/internal/groq"
)

// HandleSetup runs the key entry flow.
func HandleSetup(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	keys := newKeystore(cfg)

	if args.Subcommand == "delete" {
		if err := keys.Delete(); err != nil {
			return fmt.Errorf("delete key: %w", err)
		}
		fmt.Println("API key removed.")
		return nil
	}

	if keys.Exists() {
		fmt.Println("An API key is already stored; entering a new one replaces it.")
	}

	fmt.Print("Groq API key: ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}

	candidate := strings.TrimSpace(string(secret))
	if candidate == "" {
		return errors.New("no key entered")
	}

	fmt.Println("Verifying key...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	if err := groq.VerifyKey(ctx, candidate, cfg.API.BaseURL, cfg.API.ProbeModel); err != nil {
		if errors.Is(err, groq.ErrInvalidKey) {
			return errors.New("the key was rejected; check it and try again")
		}
		return fmt.Errorf("could not verify the key: %w", err)
	}

	if err := keys.Set(candidate); err != nil {
		return fmt.Errorf("save key: %w", err)
	}

	fmt.Println("Key verified and saved.")
	return nil
}
