// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "testing"

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if Role("tool").Valid() {
		t.Error("unknown role should be invalid")
	}
}

func TestConversationAppendAndLen(t *testing.T) {
	c := NewConversation()
	if c.Len() != 0 {
		t.Fatalf("new conversation Len = %d, want 0", c.Len())
	}

	c.Append(UserTurn("hi"), AssistantTurn("hello"))
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	turns := c.Turns()
	if turns[0].Role != RoleUser || turns[1].Role != RoleAssistant {
		t.Errorf("unexpected roles: %v, %v", turns[0].Role, turns[1].Role)
	}
}

func TestConversationTurnsIsCopy(t *testing.T) {
	c := NewConversation()
	c.Append(UserTurn("one"))

	snapshot := c.Turns()
	c.Append(AssistantTurn("two"))

	if len(snapshot) != 1 {
		t.Errorf("snapshot grew with conversation: len = %d", len(snapshot))
	}
	snapshot[0].Content = "mutated"
	if c.Turns()[0].Content != "one" {
		t.Error("mutating snapshot altered conversation")
	}
}

func TestConversationWindow(t *testing.T) {
	c := NewConversation()
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			c.Append(UserTurn("u"))
		} else {
			c.Append(AssistantTurn("a"))
		}
	}

	win := c.Window(HistoryWindow)
	if len(win) != HistoryWindow {
		t.Errorf("window len = %d, want %d", len(win), HistoryWindow)
	}
	// The window is the tail of the conversation
	all := c.Turns()
	if win[0] != all[len(all)-HistoryWindow] {
		t.Error("window does not start at the right turn")
	}

	if got := c.Window(100); len(got) != 40 {
		t.Errorf("oversized window len = %d, want 40", len(got))
	}
	if got := c.Window(0); len(got) != 0 {
		t.Errorf("zero window len = %d, want 0", len(got))
	}
}

func TestConversationClear(t *testing.T) {
	c := FromTurns([]Turn{UserTurn("hi"), AssistantTurn("yo")})
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}
