// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
package model

// HistoryWindow is the number of prior turns included in each completion
// request. Together with the system prompt and the new user turn, a
// request never carries more than HistoryWindow+2 messages.
const HistoryWindow = 15

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is an ordered sequence of turns. It is owned exclusively by
// the conversation controller for the lifetime of a session and mirrored
// to the message store after every successful mutation.
type Conversation struct {
	turns []Turn
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{turns: make([]Turn, 0)}
}

// FromTurns creates a conversation seeded with previously stored turns.
func FromTurns(turns []Turn) *Conversation {
	c := &Conversation{turns: make([]Turn, len(turns))}
	copy(c.turns, turns)
	return c
}

// Append adds turns to the end of the conversation.
func (c *Conversation) Append(turns ...Turn) {
	c.turns = append(c.turns, turns...)
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Turns returns a copy of all turns in conversation order. Callers may
// hold the slice across mutations without seeing partial state.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Window returns a copy of the last n turns (all turns if fewer exist).
// This is the bounded context sent with each completion request.
func (c *Conversation) Window(n int) []Turn {
	if n <= 0 {
		return []Turn{}
	}
	start := len(c.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(c.turns)-start)
	copy(out, c.turns[start:])
	return out
}

// Clear removes all turns.
func (c *Conversation) Clear() {
	c.turns = c.turns[:0]
}
