// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main conversation screen: the message
// viewport, the text input, the slide-out drawer, and the thinking
// indicator while a completion is in flight.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aira-tui/internal/conversation"
	"github.com/jeranaias/aira-tui/internal/ui/components"
	"github.com/jeranaias/aira-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// OpenVoiceMsg asks the parent to switch to the voice screen.
type OpenVoiceMsg struct{}

// OpenKeyModalMsg asks the parent to show the key-entry modal.
type OpenKeyModalMsg struct{}

// sendDoneMsg reports a finished SendUserText round trip. The reply (or
// fallback) is already in the conversation; err is only ErrNeedsSetup.
type sendDoneMsg struct {
	err error
}

// =============================================================================
// DRAWER
// =============================================================================

// drawerItem indexes the drawer menu entries.
type drawerItem int

const (
	drawerSetKey drawerItem = iota
	drawerClearHistory
	drawerItemCount
)

var drawerLabels = map[drawerItem]string{
	drawerSetKey:       "Set API Key",
	drawerClearHistory: "Clear Chat History",
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	theme *styles.Theme

	width  int
	height int

	// Conversation
	controller *conversation.Controller
	timeout    time.Duration

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	toast    *components.Toast

	keyMap KeyMap

	// Thinking state. While true, input is held and no second send can
	// start; one outstanding completion at a time.
	thinking bool
	// draft holds the text of the in-flight send so it can be restored
	// if the send is rejected for a missing key.
	draft string

	// Drawer state
	drawerOpen     bool
	drawerSelected drawerItem

	// Pending destructive confirm, nil when none
	confirm *components.Confirm
}

// New builds the chat screen over an existing controller. timeout
// bounds each completion request.
func New(theme *styles.Theme, controller *conversation.Controller, timeout time.Duration) Model {
	input := textinput.New()
	input.Placeholder = "Message Aira..."
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	vp := viewport.New(80, 20)

	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	m := Model{
		theme:      theme,
		controller: controller,
		timeout:    timeout,
		viewport:   vp,
		input:      input,
		spinner:    sp,
		toast:      components.NewToast(theme),
		keyMap:     DefaultKeyMap(),
	}
	m.refreshViewport(true)
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize updates layout dimensions after a terminal resize.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	// Header, input row, and status bar each take fixed height.
	vpHeight := height - 6
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.input.Width = width - 8
	m.refreshViewport(false)
}

// Refresh re-renders the conversation, called by the parent after a
// voice exchange lands new turns.
func (m *Model) Refresh() {
	m.refreshViewport(true)
}

// sendCmd runs the blocking text exchange off the UI loop. The thinking
// flag guarantees only one of these exists at a time, so the controller
// needs no locking.
func (m Model) sendCmd(text string) tea.Cmd {
	controller := m.controller
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := controller.SendUserText(ctx, text)
		if err != nil && !errors.Is(err, conversation.ErrNeedsSetup) {
			err = nil
		}
		return sendDoneMsg{err: err}
	}
}
