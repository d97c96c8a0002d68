// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for the terminal.
//
// Command: chat
//
// Examples:
//   aira chat              Start the REPL
//
// Interactive commands:
//   /help       Show available commands
//   /clear      Clear conversation history
//   /history    Show conversation history
//   /quit       Exit (also Ctrl+D)

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/aira-tui/internal/config"
	"github.com/jeranaias/aira-tui/internal/conversation"
	"github.com/jeranaias/aira-tui/internal/groq"
	"github.com/jeranaias/aira-tui/internal/keystore"
	"github.com/jeranaias/aira-tui/internal/model"
	"github.com/jeranaias/aira-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Blue).
			Bold(true)

	replyLabelStyle = lipgloss.NewStyle().
			Foreground(styles.Violet).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// replInput provides input history and line editing for the REPL.
type replInput struct {
	line        *liner.State
	historyFile string
}

func newREPLInput() *replInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &replInput{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}

	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *replInput) read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *replInput) close() {
	// History file gets owner-only permissions like the credential file.
	if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

// =============================================================================
// CHAT COMMAND HANDLER
// =============================================================================

// HandleChat runs the interactive REPL.
func HandleChat(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	keys := newKeystore(cfg)
	if !keys.Exists() {
		fmt.Println(warningStyle.Render("No API key stored. Run 'aira setup' first."))
		return nil
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open message store: %w", err)
	}
	defer store.Close()

	controller := conversation.New(store, keys, replCompleter{cfg: cfg, keys: keys}, cfg.Chat.SystemPrompt)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		renderer = nil
	}

	input := newREPLInput()
	defer input.close()

	fmt.Println(infoStyle.Render("Chatting with Aira. /help for commands, /quit to exit."))
	if n := controller.Len(); n > 0 {
		fmt.Println(infoStyle.Render(fmt.Sprintf("Restored %d messages from history.", n)))
	}

	for {
		text, err := input.read(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+D or Ctrl+C ends the session.
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
			}
			return nil
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "/") {
			if quit := runSlashCommand(text, controller); quit {
				return nil
			}
			continue
		}

		if err := controller.SendUserText(context.Background(), text); err != nil {
			if errors.Is(err, conversation.ErrNeedsSetup) {
				fmt.Println(warningStyle.Render("No API key stored. Run 'aira setup' first."))
				continue
			}
			return err
		}

		turns := controller.Turns()
		reply := turns[len(turns)-1].Content
		printReply(renderer, reply)
	}
}

// runSlashCommand executes one /command and reports whether to exit.
func runSlashCommand(text string, controller *conversation.Controller) bool {
	switch strings.ToLower(strings.Fields(text)[0]) {
	case "/quit", "/q", "/exit":
		return true
	case "/clear", "/c":
		controller.Clear()
		fmt.Println(infoStyle.Render("History cleared."))
	case "/history":
		printHistory(controller)
	case "/help", "/h":
		fmt.Println(infoStyle.Render("/clear  erase history   /history  show history   /quit  exit"))
	default:
		fmt.Println(warningStyle.Render("Unknown command. /help for the list."))
	}
	return false
}

func printHistory(controller *conversation.Controller) {
	turns := controller.Turns()
	if len(turns) == 0 {
		fmt.Println(infoStyle.Render("No messages yet."))
		return
	}
	for _, turn := range turns {
		fmt.Printf("%s %s\n", replyLabelStyle.Render(turn.Role.DisplayName()+":"), turn.Content)
	}
}

func printReply(renderer *glamour.TermRenderer, reply string) {
	fmt.Println(replyLabelStyle.Render("Aira:"))
	if renderer != nil {
		if out, err := renderer.Render(reply); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Println(reply)
}

// replCompleter builds a fresh client per request so a key rotated by
// another process is picked up mid-session.
type replCompleter struct {
	cfg  *config.Config
	keys *keystore.Store
}

func (r replCompleter) Complete(ctx context.Context, system string, history []model.Turn, user string) (string, error) {
	key, ok := r.keys.Get()
	if !ok {
		return "", groq.ErrNoAPIKey
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout())
	defer cancel()
	return groq.New(key, r.cfg).Complete(ctx, system, history, user)
}
