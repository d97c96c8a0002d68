// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// DRAWER STYLES
	// ==========================================================================

	Drawer             lipgloss.Style
	DrawerTitle        lipgloss.Style
	DrawerItem         lipgloss.Style
	DrawerItemSelected lipgloss.Style
	DrawerItemDanger   lipgloss.Style

	// ==========================================================================
	// MODAL AND DIALOG STYLES
	// ==========================================================================

	ModalBox     lipgloss.Style
	ModalTitle   lipgloss.Style
	ModalHint    lipgloss.Style
	ModalError   lipgloss.Style
	ModalSuccess lipgloss.Style

	ConfirmBox    lipgloss.Style
	ConfirmDanger lipgloss.Style

	// ==========================================================================
	// SPINNER AND LOADING STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// ==========================================================================
	// VOICE SCREEN STYLES
	// ==========================================================================

	VoiceIdle      lipgloss.Style
	VoiceListening lipgloss.Style
	VoiceStatus    lipgloss.Style
	VoicePanel     lipgloss.Style

	// ==========================================================================
	// TOAST STYLES
	// ==========================================================================

	ToastInfo  lipgloss.Style
	ToastError lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// SetSize records the terminal dimensions for layout math.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	t.UserLabel = lipgloss.NewStyle().
		Foreground(Blue).
		Bold(true)

	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Drawer
	t.Drawer = lipgloss.NewStyle().
		Background(SurfaceBright).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Overlay).
		Padding(1, 2)

	t.DrawerTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet).
		MarginBottom(1)

	t.DrawerItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.DrawerItemSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Violet).
		Bold(true).
		Padding(0, 1)

	t.DrawerItemDanger = lipgloss.NewStyle().
		Foreground(Red).
		Padding(0, 1)

	// Modals
	t.ModalBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Violet).
		Padding(1, 3)

	t.ModalTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet).
		MarginBottom(1)

	t.ModalHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.ModalError = lipgloss.NewStyle().
		Foreground(Red).
		Bold(true)

	t.ModalSuccess = lipgloss.NewStyle().
		Foreground(Green).
		Bold(true)

	t.ConfirmBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Red).
		Padding(1, 3)

	t.ConfirmDanger = lipgloss.NewStyle().
		Foreground(Red).
		Bold(true)

	// Spinner
	t.Spinner = lipgloss.NewStyle().
		Foreground(Violet)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Voice screen
	t.VoiceIdle = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Violet).
		Bold(true).
		Padding(1, 4)

	t.VoiceListening = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Red).
		Bold(true).
		Padding(1, 4)

	t.VoiceStatus = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Align(lipgloss.Center)

	t.VoicePanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2)

	// Toasts
	t.ToastInfo = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(VioletDeep).
		Padding(0, 2)

	t.ToastError = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Red).
		Padding(0, 2)
}
