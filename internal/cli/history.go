// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Stored conversation inspection.
//
// Command: history
//
// Examples:
//   aira history          Print all stored turns
//   aira history clear    Delete stored history (asks for confirmation)

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/aira-tui/internal/config"
)

// HandleHistory prints or clears the persisted conversation.
func HandleHistory(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open message store: %w", err)
	}
	defer store.Close()

	if args.Subcommand == "clear" {
		fmt.Print("Delete all stored messages? This cannot be undone. [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	}

	turns := store.Load()
	if len(turns) == 0 {
		fmt.Println("No stored messages.")
		return nil
	}
	for _, turn := range turns {
		fmt.Printf("%s: %s\n", turn.Role.DisplayName(), turn.Content)
	}
	fmt.Printf("\n%d messages.\n", len(turns))
	return nil
}
