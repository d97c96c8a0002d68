// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apikey implements the key-entry modal: a password-echo input
// that verifies the candidate key against the live API before saving.
// On first run the modal blocks until a key is stored; afterwards it can
// be dismissed.
package apikey

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aira-tui/internal/groq"
	"github.com/jeranaias/aira-tui/internal/keystore"
	"github.com/jeranaias/aira-tui/internal/ui/styles"
)

// Timing for the two auto-advance behaviors.
const (
	successDwell = 800 * time.Millisecond
	errorDwell   = 3 * time.Second
)

// =============================================================================
// MESSAGES
// =============================================================================

// VerifiedMsg carries the async probe outcome.
type VerifiedMsg struct {
	Err error
}

// DoneMsg tells the parent the modal finished: a key was saved, or the
// user dismissed it (only possible when not blocking).
type DoneMsg struct {
	Saved bool
}

type successDwellMsg struct{}
type errorDwellMsg struct{ id int }

// =============================================================================
// MODEL
// =============================================================================

type phase int

const (
	phaseEntry phase = iota
	phaseVerifying
	phaseSuccess
)

// Model is the Bubble Tea model for the key-entry modal.
type Model struct {
	theme      *styles.Theme
	keys       *keystore.Store
	baseURL    string
	probeModel string
	timeout    time.Duration
	blocking   bool

	input   textinput.Model
	spinner spinner.Model

	phase   phase
	errText string
	errID   int
}

// New builds the modal. blocking prevents dismissal until a key is
// saved, used on first run when no credential exists at all.
func New(theme *styles.Theme, keys *keystore.Store, baseURL, probeModel string, timeout time.Duration, blocking bool) Model {
	input := textinput.New()
	input.Placeholder = "gsk_..."
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '*'
	input.CharLimit = 256
	input.Width = 40
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return Model{
		theme:      theme,
		keys:       keys,
		baseURL:    baseURL,
		probeModel: probeModel,
		timeout:    timeout,
		blocking:   blocking,
		input:      input,
		spinner:    sp,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.phase != phaseEntry {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			if !m.blocking {
				return m, func() tea.Msg { return DoneMsg{Saved: false} }
			}
			return m, nil
		case "enter":
			candidate := strings.TrimSpace(m.input.Value())
			if candidate == "" {
				return m, nil
			}
			m.phase = phaseVerifying
			m.errText = ""
			return m, tea.Batch(m.spinner.Tick, m.verifyCmd(candidate))
		}

	case VerifiedMsg:
		if m.phase != phaseVerifying {
			return m, nil
		}
		if msg.Err != nil {
			m.phase = phaseEntry
			m.errText = verifyErrorText(msg.Err)
			m.errID++
			id := m.errID
			return m, tea.Tick(errorDwell, func(time.Time) tea.Msg {
				return errorDwellMsg{id: id}
			})
		}
		m.phase = phaseSuccess
		return m, tea.Tick(successDwell, func(time.Time) tea.Msg {
			return successDwellMsg{}
		})

	case successDwellMsg:
		return m, func() tea.Msg { return DoneMsg{Saved: true} }

	case errorDwellMsg:
		if msg.id == m.errID {
			m.errText = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.phase == phaseVerifying {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.phase == phaseEntry {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// verifyCmd probes the API and, on acceptance, persists the key before
// reporting success. A key is never saved without a successful probe.
func (m Model) verifyCmd(candidate string) tea.Cmd {
	keys := m.keys
	baseURL := m.baseURL
	probeModel := m.probeModel
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := groq.VerifyKey(ctx, candidate, baseURL, probeModel); err != nil {
			return VerifiedMsg{Err: err}
		}
		if err := keys.Set(candidate); err != nil {
			return VerifiedMsg{Err: err}
		}
		return VerifiedMsg{Err: nil}
	}
}

func verifyErrorText(err error) string {
	if errors.Is(err, groq.ErrInvalidKey) {
		return "That key was rejected. Check it and try again."
	}
	return "Could not verify the key. Check your connection and try again."
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.ModalTitle.Render("Groq API Key"))
	b.WriteString("\n")

	switch m.phase {
	case phaseSuccess:
		b.WriteString(m.theme.ModalSuccess.Render("Key verified and saved."))
	case phaseVerifying:
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.ThinkingText.Render(" Verifying key..."))
	default:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.errText != "" {
			b.WriteString(m.theme.ModalError.Render(m.errText))
		} else if m.blocking {
			b.WriteString(m.theme.ModalHint.Render("A key is required to chat. Enter to verify."))
		} else {
			b.WriteString(m.theme.ModalHint.Render("Enter to verify, Esc to cancel."))
		}
	}

	return m.theme.ModalBox.Render(b.String())
}
