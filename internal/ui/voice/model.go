// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice implements the voice-mode screen: one button that walks
// a session through record, transcribe, respond, and speak, with the
// transcript and reply shown as they arrive.
package voice

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aira-tui/internal/model"
	"github.com/jeranaias/aira-tui/internal/ui/styles"
	"github.com/jeranaias/aira-tui/internal/util"
	"github.com/jeranaias/aira-tui/internal/voice"
)

// =============================================================================
// MESSAGES
// =============================================================================

// event is what the session sink pushes into the screen's event queue.
// Exactly one of the fields is meaningful.
type event struct {
	state  *voice.State
	notice string
	result *voice.Result
}

// EventMsg delivers one session event into the Bubble Tea loop.
type EventMsg struct {
	ev event
}

// ResultMsg tells the parent a voice exchange completed; the parent
// records it in the conversation.
type ResultMsg struct {
	Result voice.Result
}

// CloseMsg asks the parent to leave voice mode. The session is already
// closed when this fires.
type CloseMsg struct{}

// =============================================================================
// SINK
// =============================================================================

// chanSink bridges the session's worker goroutine into the event queue.
// The channel is buffered generously; a session produces a handful of
// events per cycle.
type chanSink struct {
	events chan event
}

func (s *chanSink) StateChanged(state voice.State) {
	st := state
	s.events <- event{state: &st}
}

func (s *chanSink) Notice(text string) {
	s.events <- event{notice: text}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the voice screen. It owns the
// session for its lifetime; leaving the screen disposes the session.
type Model struct {
	theme *styles.Theme

	width  int
	height int

	session *voice.Session
	sink    *chanSink

	state      voice.State
	statusText string
	notice     string

	// Last completed exchange, shown in the transcript panel.
	lastUser string
	lastAI   string
}

// SessionFactory builds a session wired to the given sink and result
// callback. Injected so the app decides snapshots and dependencies.
type SessionFactory func(sink voice.Sink, onResult func(voice.Result)) *voice.Session

// New builds the voice screen and its session.
func New(theme *styles.Theme, factory SessionFactory) Model {
	sink := &chanSink{events: make(chan event, 32)}
	session := factory(sink, func(r voice.Result) {
		sink.events <- event{result: &r}
	})
	return Model{
		theme:      theme,
		session:    session,
		sink:       sink,
		state:      voice.StateIdle,
		statusText: "Tap to speak",
	}
}

func (m Model) Init() tea.Cmd {
	return m.listen()
}

// listen waits for the next session event. Re-armed after every event.
func (m Model) listen() tea.Cmd {
	events := m.sink.events
	return func() tea.Msg {
		return EventMsg{ev: <-events}
	}
}

// SetSize updates layout dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Close disposes the session. Safe to call more than once.
func (m *Model) Close() {
	m.session.Close()
}

// UpdateHistory refreshes the session's completion context. The parent
// calls this after recording each exchange so the next cycle sees it.
func (m *Model) UpdateHistory(turns []model.Turn) {
	m.session.SetHistory(turns)
}

// =============================================================================
// UPDATE
// =============================================================================

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case EventMsg:
		return m.applyEvent(msg.ev)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.session.Close()
		return m, func() tea.Msg { return CloseMsg{} }

	case " ", "enter":
		m.notice = ""
		switch m.state {
		case voice.StateIdle:
			m.session.Start(context.Background())
		case voice.StateListening:
			m.session.Stop()
		case voice.StateSpeaking:
			m.session.CancelSpeaking()
		}
		// Processing has no tap action; the pipeline advances itself.
		return m, nil
	}
	return m, nil
}

func (m Model) applyEvent(ev event) (Model, tea.Cmd) {
	switch {
	case ev.state != nil:
		m.state = *ev.state
		m.statusText = statusFor(m.state)
		return m, m.listen()

	case ev.notice != "":
		m.notice = ev.notice
		return m, m.listen()

	case ev.result != nil:
		m.lastUser = ev.result.UserMessage
		m.lastAI = ev.result.AIResponse
		result := *ev.result
		return m, tea.Batch(m.listen(), func() tea.Msg {
			return ResultMsg{Result: result}
		})
	}
	return m, m.listen()
}

func statusFor(state voice.State) string {
	switch state {
	case voice.StateListening:
		return "Listening... tap to stop"
	case voice.StateProcessing:
		return "Thinking..."
	case voice.StateSpeaking:
		return "Speaking... tap to cancel"
	default:
		return "Tap to speak"
	}
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.HeaderTitle.Render("Voice Mode"))
	b.WriteString("\n\n")

	button := m.theme.VoiceIdle.Render("  MIC  ")
	if m.state == voice.StateListening {
		button = m.theme.VoiceListening.Render("  REC  ")
	}
	b.WriteString(button)
	b.WriteString("\n\n")

	b.WriteString(m.theme.VoiceStatus.Render(m.statusText))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(m.theme.ModalError.Render(m.notice))
		b.WriteString("\n")
	}

	if m.lastUser != "" {
		var panel strings.Builder
		panel.WriteString(m.theme.UserLabel.Render("You: "))
		panel.WriteString(util.CleanDisplayText(m.lastUser))
		panel.WriteString("\n")
		panel.WriteString(m.theme.AssistantLabel.Render("Aira: "))
		panel.WriteString(util.CleanDisplayText(m.lastAI))
		b.WriteString("\n")
		b.WriteString(m.theme.VoicePanel.Render(panel.String()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ShortcutKey.Render("space") + m.theme.ShortcutDesc.Render(" tap  "))
	b.WriteString(m.theme.ShortcutKey.Render("esc") + m.theme.ShortcutDesc.Render(" back"))

	content := b.String()
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}
