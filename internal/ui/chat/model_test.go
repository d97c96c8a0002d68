// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aira-tui/internal/conversation"
	"github.com/jeranaias/aira-tui/internal/model"
	"github.com/jeranaias/aira-tui/internal/ui/styles"
)

type stubStore struct{}

func (stubStore) Load() []model.Turn            { return nil }
func (stubStore) Save(turns []model.Turn) error { return nil }
func (stubStore) Clear() error                  { return nil }

type stubCreds struct{ exists bool }

func (s stubCreds) Exists() bool { return s.exists }

type stubCompleter struct{}

func (stubCompleter) Complete(ctx context.Context, system string, history []model.Turn, user string) (string, error) {
	return "ok", nil
}

func testController() *conversation.Controller {
	return conversation.New(stubStore{}, stubCreds{exists: true}, stubCompleter{}, "prompt")
}

func keylessController() *conversation.Controller {
	return conversation.New(stubStore{}, stubCreds{}, stubCompleter{}, "prompt")
}

func TestNewUsesConfiguredTimeout(t *testing.T) {
	m := New(styles.NewTheme(), testController(), 25*time.Second)
	if m.timeout != 25*time.Second {
		t.Errorf("timeout = %v, want 25s", m.timeout)
	}
}

func TestNewDefaultsTimeout(t *testing.T) {
	m := New(styles.NewTheme(), testController(), 0)
	if m.timeout != 60*time.Second {
		t.Errorf("zero timeout should default to 60s, got %v", m.timeout)
	}
}

func TestVoiceKeyWithoutCredentialOpensKeyModal(t *testing.T) {
	m := New(styles.NewTheme(), keylessController(), time.Minute)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(OpenKeyModalMsg); !ok {
		t.Error("voice key without a stored key should open the key modal")
	}
}

func TestVoiceKeyWithCredentialOpensVoiceMode(t *testing.T) {
	m := New(styles.NewTheme(), testController(), time.Minute)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(OpenVoiceMsg); !ok {
		t.Error("voice key with a stored key should open voice mode")
	}
}

func TestSendWithoutCredentialKeepsDraft(t *testing.T) {
	m := New(styles.NewTheme(), keylessController(), time.Minute)
	m.input.SetValue("hello aira")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(OpenKeyModalMsg); !ok {
		t.Error("send without a stored key should open the key modal")
	}
	if got := m.input.Value(); got != "hello aira" {
		t.Errorf("typed message discarded: input = %q", got)
	}
	if m.thinking {
		t.Error("rejected send should not enter the thinking state")
	}
}

func TestSendDoneSetupErrorRestoresDraft(t *testing.T) {
	m := New(styles.NewTheme(), keylessController(), time.Minute)
	m.thinking = true
	m.draft = "hello aira"

	m, _ = m.Update(sendDoneMsg{err: conversation.ErrNeedsSetup})
	if got := m.input.Value(); got != "hello aira" {
		t.Errorf("draft not restored: input = %q", got)
	}
}
