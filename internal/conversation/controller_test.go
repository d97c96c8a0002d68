// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aira-tui/internal/model"
	"github.com/jeranaias/aira-tui/internal/voice"
)

// =============================================================================
// FAKES
// =============================================================================

type memStore struct {
	turns  []model.Turn
	saves  int
	clears int
	errOn  bool
}

func (m *memStore) Load() []model.Turn { return append([]model.Turn(nil), m.turns...) }

func (m *memStore) Save(turns []model.Turn) error {
	m.saves++
	if m.errOn {
		return errors.New("disk full")
	}
	m.turns = append([]model.Turn(nil), turns...)
	return nil
}

func (m *memStore) Clear() error {
	m.clears++
	m.turns = nil
	return nil
}

type fixedCreds struct{ present bool }

func (f fixedCreds) Exists() bool { return f.present }

type scriptedCompleter struct {
	replies []string
	err     error
	calls   int
	windows [][]model.Turn
}

func (s *scriptedCompleter) Complete(ctx context.Context, system string, history []model.Turn, user string) (string, error) {
	s.windows = append(s.windows, append([]model.Turn(nil), history...))
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) > 0 {
		reply := s.replies[0]
		if len(s.replies) > 1 {
			s.replies = s.replies[1:]
		}
		return reply, nil
	}
	return "ok", nil
}

func newController(store *memStore, creds fixedCreds, comp *scriptedCompleter) *Controller {
	return New(store, creds, comp, "you are a helpful assistant")
}

// =============================================================================
// TESTS
// =============================================================================

func TestSendAppendsBothTurns(t *testing.T) {
	store := &memStore{}
	comp := &scriptedCompleter{replies: []string{"hello!"}}
	c := newController(store, fixedCreds{true}, comp)

	require.NoError(t, c.SendUserText(context.Background(), "hi"))

	turns := c.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, "hi", turns[0].Content)
	assert.Equal(t, model.RoleAssistant, turns[1].Role)
	assert.Equal(t, "hello!", turns[1].Content)

	// Persisted twice: once after the user turn, once after the reply.
	assert.Equal(t, 2, store.saves)
	assert.Equal(t, turns, store.turns)
}

func TestSendLengthIsTwicePerCall(t *testing.T) {
	store := &memStore{}
	c := newController(store, fixedCreds{true}, &scriptedCompleter{})

	for i := 0; i < 5; i++ {
		require.NoError(t, c.SendUserText(context.Background(), fmt.Sprintf("message %d", i)))
	}

	assert.Equal(t, 10, c.Len())
	assert.Len(t, store.turns, 10)
}

func TestBlankInputIsNoop(t *testing.T) {
	store := &memStore{}
	comp := &scriptedCompleter{}
	c := newController(store, fixedCreds{true}, comp)

	require.NoError(t, c.SendUserText(context.Background(), ""))
	require.NoError(t, c.SendUserText(context.Background(), "   \t\n"))

	assert.Zero(t, c.Len())
	assert.Zero(t, store.saves)
	assert.Zero(t, comp.calls)
}

func TestMissingKeyNeedsSetup(t *testing.T) {
	store := &memStore{}
	comp := &scriptedCompleter{}
	c := newController(store, fixedCreds{false}, comp)

	err := c.SendUserText(context.Background(), "hi")

	assert.ErrorIs(t, err, ErrNeedsSetup)
	assert.Zero(t, c.Len())
	assert.Zero(t, store.saves)
	assert.Zero(t, comp.calls)
}

func TestWindowExcludesCurrentMessage(t *testing.T) {
	store := &memStore{}
	comp := &scriptedCompleter{}
	c := newController(store, fixedCreds{true}, comp)

	require.NoError(t, c.SendUserText(context.Background(), "first"))
	require.NoError(t, c.SendUserText(context.Background(), "second"))

	require.Len(t, comp.windows, 2)
	assert.Empty(t, comp.windows[0])
	// Second call sees the first exchange but not "second" itself.
	require.Len(t, comp.windows[1], 2)
	assert.Equal(t, "first", comp.windows[1][0].Content)
}

func TestWindowNeverExceedsLimit(t *testing.T) {
	store := &memStore{}
	comp := &scriptedCompleter{}
	c := newController(store, fixedCreds{true}, comp)

	for i := 0; i < 20; i++ {
		require.NoError(t, c.SendUserText(context.Background(), fmt.Sprintf("message %d", i)))
	}

	for _, window := range comp.windows {
		assert.LessOrEqual(t, len(window), model.HistoryWindow)
	}
}

func TestCompletionFailureAppendsFallback(t *testing.T) {
	store := &memStore{}
	comp := &scriptedCompleter{err: errors.New("connection reset")}
	c := newController(store, fixedCreds{true}, comp)

	require.NoError(t, c.SendUserText(context.Background(), "hi"))

	turns := c.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, FallbackErrorResponse, turns[1].Content)
	assert.Equal(t, 2, store.saves)
}

func TestPersistenceFailureDoesNotBlock(t *testing.T) {
	store := &memStore{errOn: true}
	c := newController(store, fixedCreds{true}, &scriptedCompleter{})

	require.NoError(t, c.SendUserText(context.Background(), "hi"))

	// The in-memory conversation advanced even though every save failed.
	assert.Equal(t, 2, c.Len())
}

func TestReceiveVoiceResultSingleWrite(t *testing.T) {
	store := &memStore{}
	c := newController(store, fixedCreds{true}, &scriptedCompleter{})

	c.ReceiveVoiceResult(voice.Result{UserMessage: "what time is it", AIResponse: "half past three"})

	turns := c.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, model.RoleAssistant, turns[1].Role)
	assert.Equal(t, 1, store.saves)
}

func TestClearEmptiesEverything(t *testing.T) {
	store := &memStore{}
	c := newController(store, fixedCreds{true}, &scriptedCompleter{})
	require.NoError(t, c.SendUserText(context.Background(), "hi"))

	c.Clear()

	assert.Zero(t, c.Len())
	assert.Empty(t, store.turns)
	assert.Equal(t, 1, store.clears)
}

func TestSeededFromStore(t *testing.T) {
	store := &memStore{turns: []model.Turn{
		model.UserTurn("earlier"),
		model.AssistantTurn("yes, earlier"),
	}}
	c := newController(store, fixedCreds{true}, &scriptedCompleter{})

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "earlier", c.Turns()[0].Content)
}
