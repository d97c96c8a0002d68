// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aira-tui/internal/ui/styles"
)

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEscape}
	}
	if s == "left" {
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmDefaultsToNo(t *testing.T) {
	c := NewConfirm(styles.NewTheme(), "Delete?", "Really?")
	if got := c.Update(keyMsg("enter")); got != ConfirmRejected {
		t.Errorf("enter on fresh dialog = %v, want rejected", got)
	}
}

func TestConfirmExplicitKeys(t *testing.T) {
	theme := styles.NewTheme()

	c := NewConfirm(theme, "Delete?", "Really?")
	if got := c.Update(keyMsg("y")); got != ConfirmAccepted {
		t.Errorf("y = %v, want accepted", got)
	}

	c = NewConfirm(theme, "Delete?", "Really?")
	if got := c.Update(keyMsg("esc")); got != ConfirmRejected {
		t.Errorf("esc = %v, want rejected", got)
	}
}

func TestConfirmToggleThenAccept(t *testing.T) {
	c := NewConfirm(styles.NewTheme(), "Delete?", "Really?")
	if got := c.Update(keyMsg("left")); got != ConfirmPending {
		t.Fatalf("toggle resolved early: %v", got)
	}
	if got := c.Update(keyMsg("enter")); got != ConfirmAccepted {
		t.Errorf("enter after toggle = %v, want accepted", got)
	}
}
