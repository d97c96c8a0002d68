// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the authoritative in-memory chat history and
// coordinates the store, the credential store, and the completion client.
// The UI renders snapshots of the conversation; it never mutates turns
// directly.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jeranaias/aira-tui/internal/model"
	"github.com/jeranaias/aira-tui/internal/voice"
)

// FallbackErrorResponse replaces the assistant reply when the completion
// request fails outright. The conversation keeps moving; the failure is
// absorbed as a normal-looking turn.
const FallbackErrorResponse = "Sorry, I had trouble responding. Please try again."

// ErrNeedsSetup signals that no API key is stored. The UI reacts by
// opening the key-entry flow; nothing is appended or persisted.
var ErrNeedsSetup = errors.New("conversation: API key not configured")

// =============================================================================
// PORTS
// =============================================================================

// Store persists the ordered turn list. Implemented by storage.MessageStore.
type Store interface {
	Load() []model.Turn
	Save(turns []model.Turn) error
	Clear() error
}

// Credentials answers whether a key is available. Implemented by
// keystore.Store.
type Credentials interface {
	Exists() bool
}

// Completer produces an assistant reply. Implemented by groq.Client.
type Completer interface {
	Complete(ctx context.Context, system string, history []model.Turn, user string) (string, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the single owner of the conversation. It is not safe for
// concurrent use; the TUI serializes calls through its event loop, and
// the REPL is single-threaded by nature.
type Controller struct {
	conv         *model.Conversation
	store        Store
	creds        Credentials
	completer    Completer
	systemPrompt string
}

// New builds a Controller seeded from the store. A corrupt or missing
// history loads as empty; the user starts fresh rather than crashing.
func New(store Store, creds Credentials, completer Completer, systemPrompt string) *Controller {
	return &Controller{
		conv:         model.FromTurns(store.Load()),
		store:        store,
		creds:        creds,
		completer:    completer,
		systemPrompt: systemPrompt,
	}
}

// HasCredential reports whether an API key is available. Screens check
// this before starting a flow that would only fail with ErrNeedsSetup.
func (c *Controller) HasCredential() bool {
	return c.creds.Exists()
}

// Turns returns a snapshot of the conversation for rendering.
func (c *Controller) Turns() []model.Turn {
	return c.conv.Turns()
}

// Len returns the number of recorded turns.
func (c *Controller) Len() int {
	return c.conv.Len()
}

// Window returns the trailing context window used for completions.
func (c *Controller) Window() []model.Turn {
	return c.conv.Window(model.HistoryWindow)
}

// SendUserText runs one text exchange: append the user turn, persist,
// request a completion over the pre-call history window, append the
// reply (real or fallback), persist again.
//
// Blank input is a silent no-op. A missing credential returns
// ErrNeedsSetup before anything is recorded. Persistence failures are
// logged and otherwise ignored; the in-memory conversation is the
// source of truth.
func (c *Controller) SendUserText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !c.creds.Exists() {
		return ErrNeedsSetup
	}

	// The completion context is the window as it stood before this
	// message; the new text rides along as the user message itself.
	window := c.conv.Window(model.HistoryWindow)

	c.conv.Append(model.UserTurn(text))
	c.persist()

	reply, err := c.completer.Complete(ctx, c.systemPrompt, window, text)
	if err != nil {
		slog.Warn("completion request failed", "error", err)
		reply = FallbackErrorResponse
	}

	c.conv.Append(model.AssistantTurn(reply))
	c.persist()
	return nil
}

// ReceiveVoiceResult records a completed voice exchange: user turn then
// assistant turn, with a single persistence write. The voice session
// already obtained the reply; no further network traffic happens here.
func (c *Controller) ReceiveVoiceResult(result voice.Result) {
	c.conv.Append(
		model.UserTurn(result.UserMessage),
		model.AssistantTurn(result.AIResponse),
	)
	c.persist()
}

// Clear empties the conversation and the store in one step. Confirmation
// prompts belong to the UI, not here.
func (c *Controller) Clear() {
	c.conv.Clear()
	if err := c.store.Clear(); err != nil {
		slog.Warn("failed to clear stored history", "error", err)
	}
}

func (c *Controller) persist() {
	if err := c.store.Save(c.conv.Turns()); err != nil {
		slog.Warn("failed to persist conversation", "error", err)
	}
}
