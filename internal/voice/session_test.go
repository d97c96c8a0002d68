// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aira-tui/internal/groq"
	"github.com/jeranaias/aira-tui/internal/model"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeRecorder struct {
	mu        sync.Mutex
	available bool
	startErr  error
	stopErr   error
	path      string
	started   int
	stopped   int
}

func (f *fakeRecorder) Available() bool { return f.available }

func (f *fakeRecorder) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	return nil
}

func (f *fakeRecorder) Stop() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return f.path, f.stopErr
}

type fakeSpeaker struct {
	mu        sync.Mutex
	spoken    []string
	cancelled int
	block     chan struct{} // when set, Speak blocks until closed
}

func (f *fakeSpeaker) Speak(ctx context.Context, text string) error {
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return nil
}

func (f *fakeSpeaker) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
	if f.block != nil {
		select {
		case <-f.block:
		default:
			close(f.block)
		}
	}
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	return f.text, f.err
}

type fakeCompleter struct {
	mu        sync.Mutex
	reply     string
	err       error
	calls     int
	gate      chan struct{} // when set, Complete blocks until closed
	system    string
	histories [][]model.Turn
}

func (f *fakeCompleter) Complete(ctx context.Context, system string, history []model.Turn, user string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.system = system
	f.histories = append(f.histories, append([]model.Turn(nil), history...))
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.reply, f.err
}

// recordingSink captures every state change and notice.
type recordingSink struct {
	mu      sync.Mutex
	states  []State
	notices []string
}

func (s *recordingSink) StateChanged(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, state)
}

func (s *recordingSink) Notice(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, text)
}

func (s *recordingSink) snapshot() ([]State, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]State(nil), s.states...), append([]string(nil), s.notices...)
}

// waitForState polls until the session reaches want or the deadline hits.
func waitForState(t *testing.T, s *Session, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session never reached %s (stuck at %s)", want, s.State())
}

type harness struct {
	recorder    *fakeRecorder
	speaker     *fakeSpeaker
	transcriber *fakeTranscriber
	completer   *fakeCompleter
	sink        *recordingSink
	results     []Result
	resultsMu   sync.Mutex
	session     *Session
}

func newHarness(opts Options) *harness {
	h := &harness{
		recorder:    &fakeRecorder{available: true, path: "/tmp/rec.m4a"},
		speaker:     &fakeSpeaker{},
		transcriber: &fakeTranscriber{text: "hello there"},
		completer:   &fakeCompleter{reply: "Hi! How can I help?"},
		sink:        &recordingSink{},
	}
	opts.OnResult = func(r Result) {
		h.resultsMu.Lock()
		h.results = append(h.results, r)
		h.resultsMu.Unlock()
	}
	h.session = NewSession(h.recorder, h.speaker, h.transcriber, h.completer, h.sink, opts)
	return h
}

func (h *harness) resultCount() int {
	h.resultsMu.Lock()
	defer h.resultsMu.Unlock()
	return len(h.results)
}

// =============================================================================
// TESTS
// =============================================================================

func TestSuccessfulCycle(t *testing.T) {
	h := newHarness(Options{SystemPrompt: "be brief"})

	h.session.Start(context.Background())
	require.Equal(t, StateListening, h.session.State())

	h.session.Stop()
	waitForState(t, h.session, StateIdle)

	h.resultsMu.Lock()
	require.Len(t, h.results, 1)
	assert.Equal(t, "hello there", h.results[0].UserMessage)
	assert.Equal(t, "Hi! How can I help?", h.results[0].AIResponse)
	h.resultsMu.Unlock()

	assert.Equal(t, []string{"Hi! How can I help?"}, h.speaker.spoken)
	assert.Equal(t, "be brief", h.completer.system)

	states, _ := h.sink.snapshot()
	assert.Equal(t, []State{StateListening, StateProcessing, StateSpeaking, StateIdle}, states)
}

func TestMicUnavailableStaysIdle(t *testing.T) {
	h := newHarness(Options{})
	h.recorder.available = false

	h.session.Start(context.Background())

	assert.Equal(t, StateIdle, h.session.State())
	_, notices := h.sink.snapshot()
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], "Microphone unavailable")
	assert.Zero(t, h.recorder.started)
}

func TestShortRecordingEmitsNothing(t *testing.T) {
	h := newHarness(Options{})
	h.transcriber.err = groq.ErrAudioTooShort

	h.session.Start(context.Background())
	h.session.Stop()
	waitForState(t, h.session, StateIdle)

	assert.Zero(t, h.resultCount())
	assert.Zero(t, h.completer.calls)
	_, notices := h.sink.snapshot()
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], "too short")
}

func TestEmptyTranscriptSkipsCompletion(t *testing.T) {
	h := newHarness(Options{})
	h.transcriber.err = groq.ErrEmptyTranscript

	h.session.Start(context.Background())
	h.session.Stop()
	waitForState(t, h.session, StateIdle)

	assert.Zero(t, h.resultCount())
	assert.Zero(t, h.completer.calls)
	_, notices := h.sink.snapshot()
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], "No speech detected")
}

func TestCompletionFailureEmitsNothing(t *testing.T) {
	h := newHarness(Options{})
	h.completer.err = errors.New("connection refused")

	h.session.Start(context.Background())
	h.session.Stop()
	waitForState(t, h.session, StateIdle)

	assert.Zero(t, h.resultCount())
	assert.Empty(t, h.speaker.spoken)
	_, notices := h.sink.snapshot()
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], "trouble responding")
}

func TestCancelSpeaking(t *testing.T) {
	h := newHarness(Options{})
	h.speaker.block = make(chan struct{})

	h.session.Start(context.Background())
	h.session.Stop()
	waitForState(t, h.session, StateSpeaking)

	h.session.CancelSpeaking()

	assert.Equal(t, StateIdle, h.session.State())
	assert.GreaterOrEqual(t, h.speaker.cancelled, 1)
	// Result was already emitted when the reply arrived.
	assert.Equal(t, 1, h.resultCount())
}

func TestCloseWhileListeningStopsRecorder(t *testing.T) {
	h := newHarness(Options{})

	h.session.Start(context.Background())
	require.Equal(t, StateListening, h.session.State())

	h.session.Close()

	assert.Equal(t, 1, h.recorder.stopped)
	assert.Zero(t, h.resultCount())
}

func TestLateResultDiscardedAfterClose(t *testing.T) {
	h := newHarness(Options{})
	h.completer.gate = make(chan struct{})

	h.session.Start(context.Background())
	h.session.Stop()
	waitForState(t, h.session, StateProcessing)

	h.session.Close()
	close(h.completer.gate) // completion arrives after disposal

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, h.resultCount())
	assert.Empty(t, h.speaker.spoken)
}

func TestStartWhileListeningIsNoop(t *testing.T) {
	h := newHarness(Options{})

	h.session.Start(context.Background())
	h.session.Start(context.Background())

	assert.Equal(t, 1, h.recorder.started)
}

func TestHistorySnapshotClamped(t *testing.T) {
	history := make([]model.Turn, 40)
	for i := range history {
		history[i] = model.UserTurn("turn")
	}
	h := newHarness(Options{History: history})

	assert.Len(t, h.session.opts.History, model.HistoryWindow)
}

func TestHistoryUpdatedBetweenCycles(t *testing.T) {
	h := newHarness(Options{History: []model.Turn{model.UserTurn("earlier")}})

	h.session.Start(context.Background())
	h.session.Stop()
	waitForState(t, h.session, StateIdle)

	// The screen pushes the grown conversation before the next cycle,
	// the way the chat history updates after each exchange lands.
	updated := []model.Turn{
		model.UserTurn("earlier"),
		model.UserTurn("hello there"),
		model.AssistantTurn("Hi! How can I help?"),
	}
	h.session.SetHistory(updated)

	h.session.Start(context.Background())
	h.session.Stop()
	waitForState(t, h.session, StateIdle)

	h.completer.mu.Lock()
	defer h.completer.mu.Unlock()
	require.Len(t, h.completer.histories, 2)
	assert.Len(t, h.completer.histories[0], 1)
	assert.Equal(t, updated, h.completer.histories[1])
}

func TestSpokenTextSanitized(t *testing.T) {
	h := newHarness(Options{})
	h.completer.reply = "Sure thing!<break/>\U0001F600"

	h.session.Start(context.Background())
	h.session.Stop()
	waitForState(t, h.session, StateIdle)

	require.Len(t, h.speaker.spoken, 1)
	assert.Equal(t, "Sure thing!", h.speaker.spoken[0])

	// The emitted response keeps the raw trimmed text.
	h.resultsMu.Lock()
	assert.Equal(t, "Sure thing!<break/>\U0001F600", h.results[0].AIResponse)
	h.resultsMu.Unlock()
}
