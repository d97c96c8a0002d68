// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides small reusable widgets shared by the
// chat and voice screens.
package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aira-tui/internal/ui/styles"
)

// ConfirmResult reports how a confirm dialog was resolved.
type ConfirmResult int

const (
	ConfirmPending ConfirmResult = iota
	ConfirmAccepted
	ConfirmRejected
)

// Confirm is a modal yes/no dialog for destructive actions. "No" is the
// default; Enter on a fresh dialog rejects.
type Confirm struct {
	theme    *styles.Theme
	Title    string
	Prompt   string
	selected bool // true = yes
}

// NewConfirm builds a dialog with "no" preselected.
func NewConfirm(theme *styles.Theme, title, prompt string) *Confirm {
	return &Confirm{theme: theme, Title: title, Prompt: prompt}
}

// Update handles one key event and reports whether the dialog resolved.
func (c *Confirm) Update(msg tea.KeyMsg) ConfirmResult {
	switch msg.String() {
	case "left", "right", "tab", "h", "l":
		c.selected = !c.selected
	case "y":
		return ConfirmAccepted
	case "n", "esc":
		return ConfirmRejected
	case "enter":
		if c.selected {
			return ConfirmAccepted
		}
		return ConfirmRejected
	}
	return ConfirmPending
}

// View renders the dialog box.
func (c *Confirm) View() string {
	var b strings.Builder
	b.WriteString(c.theme.ConfirmDanger.Render(c.Title))
	b.WriteString("\n\n")
	b.WriteString(c.Prompt)
	b.WriteString("\n\n")

	yes := c.theme.DrawerItem.Render("[ Yes ]")
	no := c.theme.DrawerItemSelected.Render("[ No ]")
	if c.selected {
		yes = c.theme.DrawerItemSelected.Render("[ Yes ]")
		no = c.theme.DrawerItem.Render("[ No ]")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, yes, "  ", no))

	return c.theme.ConfirmBox.Render(b.String())
}
