// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/aira-tui/internal/model"
	"github.com/jeranaias/aira-tui/internal/util"
)

// View renders the chat screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.thinking {
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.ThinkingText.Render(" AI is thinking..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.theme.InputContainer.Render(
			m.theme.InputPrompt.Render("> ") + m.input.View()))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusBar())

	base := b.String()

	// Overlays, most specific wins.
	if m.confirm != nil {
		return m.overlay(base, m.confirm.View())
	}
	if m.drawerOpen {
		return m.overlay(base, m.renderDrawer())
	}
	if m.toast.Visible() {
		return base + "\n" + m.toast.View()
	}
	return base
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("Aira")
	subtitle := m.theme.HeaderSubtitle.Render(" your AI companion")
	return m.theme.Header.Width(m.width).Render(title + subtitle)
}

func (m Model) renderStatusBar() string {
	parts := []string{
		m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" send"),
		m.theme.ShortcutKey.Render("ctrl+v") + m.theme.ShortcutDesc.Render(" voice"),
		m.theme.ShortcutKey.Render("ctrl+d") + m.theme.ShortcutDesc.Render(" menu"),
		m.theme.ShortcutKey.Render("ctrl+c") + m.theme.ShortcutDesc.Render(" quit"),
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderDrawer() string {
	var b strings.Builder
	b.WriteString(m.theme.DrawerTitle.Render("Menu"))
	b.WriteString("\n")
	for item := drawerItem(0); item < drawerItemCount; item++ {
		label := drawerLabels[item]
		style := m.theme.DrawerItem
		if item == m.drawerSelected {
			style = m.theme.DrawerItemSelected
		} else if item == drawerClearHistory {
			style = m.theme.DrawerItemDanger
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
	}
	return m.theme.Drawer.Render(b.String())
}

// overlay centers content over the base view. Bubble Tea has no real
// compositing, so the overlay simply replaces the screen region.
func (m Model) overlay(base, content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// refreshViewport rebuilds the bubble list from the conversation. The
// display transform runs here, at render time only; stored content is
// untouched.
func (m *Model) refreshViewport(gotoBottom bool) {
	turns := m.controller.Turns()

	maxBubble := m.bubbleWidth()
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderTurn(turn, maxBubble))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

// bubbleWidth caps bubble content so both margins stay visible.
func (m Model) bubbleWidth() int {
	w := m.viewport.Width - 12
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) renderTurn(turn model.Turn, maxWidth int) string {
	content := util.CleanDisplayText(turn.Content)

	label := m.theme.AssistantLabel.Render(turn.Role.DisplayName())
	bubble := m.theme.AssistantBubble
	align := lipgloss.Left
	if turn.Role == model.RoleUser {
		label = m.theme.UserLabel.Render(turn.Role.DisplayName())
		bubble = m.theme.UserBubble
		align = lipgloss.Right
	}

	rendered := bubble.Width(fitWidth(content, maxWidth)).Render(content)
	block := label + "\n" + rendered

	if m.viewport.Width > 0 {
		return lipgloss.PlaceHorizontal(m.viewport.Width, align, block)
	}
	return block
}

// fitWidth sizes a bubble to its longest line, clamped to maxWidth, so
// short messages do not stretch across the screen.
func fitWidth(content string, maxWidth int) int {
	widest := 0
	for _, line := range strings.Split(content, "\n") {
		if w := runewidth.StringWidth(line); w > widest {
			widest = w
		}
	}
	if widest > maxWidth {
		return maxWidth
	}
	if widest < 4 {
		return 4
	}
	return widest
}
