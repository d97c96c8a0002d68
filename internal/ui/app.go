// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui composes the application screens: chat, voice mode, and
// the key-entry modal. App is the root Bubble Tea model.
package ui

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aira-tui/internal/audio"
	"github.com/jeranaias/aira-tui/internal/config"
	"github.com/jeranaias/aira-tui/internal/conversation"
	"github.com/jeranaias/aira-tui/internal/groq"
	"github.com/jeranaias/aira-tui/internal/keystore"
	"github.com/jeranaias/aira-tui/internal/model"
	"github.com/jeranaias/aira-tui/internal/ui/apikey"
	"github.com/jeranaias/aira-tui/internal/ui/chat"
	"github.com/jeranaias/aira-tui/internal/ui/styles"
	voicescreen "github.com/jeranaias/aira-tui/internal/ui/voice"
	"github.com/jeranaias/aira-tui/internal/voice"
)

// =============================================================================
// DEPENDENCY WIRING
// =============================================================================

// KeyedCompleter resolves the API key from the keystore on every call,
// so a key saved through the modal takes effect without restarting.
type KeyedCompleter struct {
	Keys *keystore.Store
	Cfg  *config.Config
}

func (k *KeyedCompleter) client() (*groq.Client, error) {
	key, ok := k.Keys.Get()
	if !ok {
		return nil, groq.ErrNoAPIKey
	}
	return groq.New(key, k.Cfg), nil
}

func (k *KeyedCompleter) Complete(ctx context.Context, system string, history []model.Turn, user string) (string, error) {
	c, err := k.client()
	if err != nil {
		return "", err
	}
	return c.Complete(ctx, system, history, user)
}

func (k *KeyedCompleter) Transcribe(ctx context.Context, path string) (string, error) {
	c, err := k.client()
	if err != nil {
		return "", err
	}
	return c.Transcribe(ctx, path)
}

// =============================================================================
// APP MODEL
// =============================================================================

// screen names the active top-level view.
type screen int

const (
	screenChat screen = iota
	screenVoice
)

// App is the root model. It owns the theme, the conversation
// controller, and whichever screen is active.
type App struct {
	theme      *styles.Theme
	cfg        *config.Config
	keys       *keystore.Store
	completer  *KeyedCompleter
	controller *conversation.Controller

	active screen
	chat   chat.Model
	voice  voicescreen.Model

	// Non-nil while the key modal is up. Blocking on first run.
	keyModal *apikey.Model

	width  int
	height int
}

// NewApp wires the full application. store and keys are already open.
func NewApp(cfg *config.Config, keys *keystore.Store, store conversation.Store) App {
	theme := styles.NewTheme()
	completer := &KeyedCompleter{Keys: keys, Cfg: cfg}
	controller := conversation.New(store, keys, completer, cfg.Chat.SystemPrompt)

	app := App{
		theme:      theme,
		cfg:        cfg,
		keys:       keys,
		completer:  completer,
		controller: controller,
		chat:       chat.New(theme, controller, cfg.Timeout()),
	}

	// First run blocks on key entry; there is nothing to do without one.
	if !keys.Exists() {
		modal := apikey.New(theme, keys, cfg.API.BaseURL, cfg.API.ProbeModel, cfg.Timeout(), true)
		app.keyModal = &modal
	}
	return app
}

func (a App) Init() tea.Cmd {
	if a.keyModal != nil {
		return a.keyModal.Init()
	}
	return a.chat.Init()
}

// =============================================================================
// UPDATE
// =============================================================================

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.theme.SetSize(msg.Width, msg.Height)
		a.chat.SetSize(msg.Width, msg.Height)
		a.voice.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.closeActiveSession()
			return a, tea.Quit
		}

	case chat.OpenKeyModalMsg:
		modal := apikey.New(a.theme, a.keys, a.cfg.API.BaseURL, a.cfg.API.ProbeModel, a.cfg.Timeout(), false)
		a.keyModal = &modal
		return a, modal.Init()

	case apikey.DoneMsg:
		a.keyModal = nil
		return a, a.chat.Init()

	case chat.OpenVoiceMsg:
		a.voice = voicescreen.New(a.theme, a.sessionFactory())
		a.active = screenVoice
		a.voice.SetSize(a.width, a.height)
		return a, a.voice.Init()

	case voicescreen.CloseMsg:
		a.active = screenChat
		a.chat.Refresh()
		return a, nil

	case voicescreen.ResultMsg:
		a.controller.ReceiveVoiceResult(msg.Result)
		a.voice.UpdateHistory(a.controller.Window())
		a.chat.Refresh()
		// Stay on the voice screen; it re-arms its own listener.
		return a, nil
	}

	// Route everything else to the modal or the active screen.
	if a.keyModal != nil {
		modal, cmd := a.keyModal.Update(msg)
		a.keyModal = &modal
		return a, cmd
	}

	var cmd tea.Cmd
	switch a.active {
	case screenVoice:
		a.voice, cmd = a.voice.Update(msg)
	default:
		a.chat, cmd = a.chat.Update(msg)
	}
	return a, cmd
}

// sessionFactory builds a voice session over the current conversation
// snapshot and the configured audio stack.
func (a App) sessionFactory() voicescreen.SessionFactory {
	cfg := a.cfg
	completer := a.completer
	snapshot := a.controller.Window()

	return func(sink voice.Sink, onResult func(voice.Result)) *voice.Session {
		recorder := audio.NewFFmpegRecorder(cfg.Voice, recordingPath())

		var speaker voice.Speaker
		execSpeaker := audio.NewExecSpeaker(cfg.Voice.SpeechCommand)
		if execSpeaker.Available() {
			speaker = execSpeaker
		} else {
			speaker = audio.NewDwellSpeaker()
		}

		return voice.NewSession(recorder, speaker, completer, completer, sink, voice.Options{
			SystemPrompt: cfg.Voice.SystemPrompt,
			History:      snapshot,
			Timeout:      cfg.Timeout(),
			OnResult:     onResult,
		})
	}
}

// recordingPath is the fixed location for the in-progress capture.
func recordingPath() string {
	dir, err := config.Dir()
	if err != nil {
		return filepath.Join("/tmp", "aira-recording.m4a")
	}
	return filepath.Join(dir, "recording.m4a")
}

func (a *App) closeActiveSession() {
	if a.active == screenVoice {
		a.voice.Close()
	}
}

// =============================================================================
// VIEW
// =============================================================================

func (a App) View() string {
	if a.keyModal != nil {
		return a.center(a.keyModal.View())
	}
	if a.active == screenVoice {
		return a.voice.View()
	}
	return a.chat.View()
}

func (a App) center(content string) string {
	if a.width == 0 || a.height == 0 {
		return content
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}
