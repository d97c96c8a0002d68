// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aira-tui/internal/ui/components"
)

// Update handles Bubble Tea messages for the chat screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// A pending confirm swallows all keys until resolved.
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		if m.drawerOpen {
			return m.updateDrawer(msg)
		}
		return m.updateMain(msg)

	case sendDoneMsg:
		m.thinking = false
		m.input.Focus()
		m.refreshViewport(true)
		if msg.err != nil {
			// Only ErrNeedsSetup survives sendCmd's filtering. Nothing
			// was recorded, so the draft goes back into the input.
			m.input.SetValue(m.draft)
			m.draft = ""
			return m, func() tea.Msg { return OpenKeyModalMsg{} }
		}
		m.draft = ""
		return m, nil

	case spinner.TickMsg:
		if m.thinking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case components.ToastExpiredMsg:
		m.toast.Expire(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateMain handles keys in the normal typing state.
func (m Model) updateMain(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Drawer):
		m.drawerOpen = true
		m.drawerSelected = drawerSetKey
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keyMap.Voice):
		if m.thinking {
			return m, nil
		}
		// Voice mode is useless without a key; route to setup instead.
		if !m.controller.HasCredential() {
			return m, func() tea.Msg { return OpenKeyModalMsg{} }
		}
		return m, func() tea.Msg { return OpenVoiceMsg{} }

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.LineUp(3)
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.LineDown(3)
		return m, nil

	case key.Matches(msg, m.keyMap.Send):
		if m.thinking {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if !m.controller.HasCredential() {
			// Keep the draft; it sends once a key is saved.
			return m, func() tea.Msg { return OpenKeyModalMsg{} }
		}
		m.draft = text
		m.input.Reset()
		m.input.Blur()
		m.thinking = true
		// The user turn appears immediately; the reply arrives with
		// sendDoneMsg.
		return m, tea.Batch(m.spinner.Tick, m.sendCmd(text))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateDrawer handles keys while the drawer is open.
func (m Model) updateDrawer(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+d":
		m.closeDrawer()
		return m, nil

	case "up", "k":
		if m.drawerSelected > 0 {
			m.drawerSelected--
		}
		return m, nil

	case "down", "j":
		if m.drawerSelected < drawerItemCount-1 {
			m.drawerSelected++
		}
		return m, nil

	case "enter":
		switch m.drawerSelected {
		case drawerSetKey:
			m.closeDrawer()
			return m, func() tea.Msg { return OpenKeyModalMsg{} }
		case drawerClearHistory:
			m.confirm = components.NewConfirm(m.theme,
				"Clear chat history?",
				"All messages will be deleted. This cannot be undone.")
			return m, nil
		}
	}
	return m, nil
}

// updateConfirm resolves the destructive-action dialog.
func (m Model) updateConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.confirm.Update(msg) {
	case components.ConfirmAccepted:
		m.confirm = nil
		m.closeDrawer()
		m.controller.Clear()
		m.refreshViewport(true)
		return m, m.toast.Show("Chat history cleared", false, 2*time.Second)
	case components.ConfirmRejected:
		m.confirm = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) closeDrawer() {
	m.drawerOpen = false
	if !m.thinking {
		m.input.Focus()
	}
}
