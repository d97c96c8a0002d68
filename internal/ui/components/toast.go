// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aira-tui/internal/ui/styles"
)

// ToastExpiredMsg is delivered when a toast's display window ends.
type ToastExpiredMsg struct {
	ID int
}

// Toast is a transient status line shown over the active screen.
type Toast struct {
	theme   *styles.Theme
	id      int
	text    string
	isError bool
	visible bool
}

// NewToast builds an empty, hidden toast.
func NewToast(theme *styles.Theme) *Toast {
	return &Toast{theme: theme}
}

// Show displays text for the given duration and returns the expiry
// command. A new Show supersedes any toast still on screen.
func (t *Toast) Show(text string, isError bool, d time.Duration) tea.Cmd {
	t.id++
	t.text = text
	t.isError = isError
	t.visible = true

	id := t.id
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Expire hides the toast if msg refers to the currently shown one.
// Stale expiries from superseded toasts are ignored.
func (t *Toast) Expire(msg ToastExpiredMsg) {
	if msg.ID == t.id {
		t.visible = false
	}
}

// Visible reports whether there is a toast to draw.
func (t *Toast) Visible() bool { return t.visible }

// View renders the toast, or an empty string when hidden.
func (t *Toast) View() string {
	if !t.visible {
		return ""
	}
	if t.isError {
		return t.theme.ToastError.Render(t.text)
	}
	return t.theme.ToastInfo.Render(t.text)
}
