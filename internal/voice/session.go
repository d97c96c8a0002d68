// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice sequences one spoken exchange: record, transcribe,
// complete, speak. A Session is a small finite-state machine owned by
// the voice screen; it emits at most one transcript/reply pair per
// cycle and is disposed when the screen closes.
package voice

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/aira-tui/internal/groq"
	"github.com/jeranaias/aira-tui/internal/model"
	"github.com/jeranaias/aira-tui/internal/util"
)

// =============================================================================
// STATES
// =============================================================================

// State is the session's single active phase.
type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateSpeaking   State = "speaking"
)

// Result is one completed voice exchange: what the user said and what
// the assistant answered. AIResponse is the trimmed raw reply, not the
// speech-sanitized form.
type Result struct {
	UserMessage string
	AIResponse  string
}

// =============================================================================
// PORTS
// =============================================================================

// Recorder and Speaker mirror the audio package interfaces; redeclared
// here so tests can fake them without touching real processes.

type Recorder interface {
	Available() bool
	Start(ctx context.Context) error
	Stop() (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string) error
	Cancel()
}

// Transcriber turns a recording file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Completer produces an assistant reply for a user message in context.
type Completer interface {
	Complete(ctx context.Context, system string, history []model.Turn, user string) (string, error)
}

// Sink receives state changes and user-facing notices. Implementations
// must be safe to call from the session's worker goroutine; the TUI
// sink forwards into the Bubble Tea event loop.
type Sink interface {
	StateChanged(state State)
	Notice(text string)
}

// =============================================================================
// SESSION
// =============================================================================

// Options configures a Session at construction.
type Options struct {
	SystemPrompt string
	// History is the conversation snapshot taken when the voice screen
	// opened. The screen refreshes it with SetHistory after each
	// exchange lands, so later cycles see earlier ones.
	History []model.Turn
	// Timeout bounds each network call independently; closing the
	// session does not cancel requests in flight.
	Timeout time.Duration

	// OnResult receives exactly one Result per successful cycle. Called
	// from the worker goroutine, never after Close.
	OnResult func(Result)
}

// Session drives one voice conversation screen. All public methods are
// safe for concurrent use; internally a mutex serializes transitions.
type Session struct {
	id          string
	recorder    Recorder
	speaker     Speaker
	transcriber Transcriber
	completer   Completer
	sink        Sink
	opts        Options

	mu     sync.Mutex
	state  State
	closed bool
	// generation increments on Close and CancelSpeaking so a goroutine
	// still working for the superseded cycle can detect it lost.
	generation uint64
}

// NewSession builds an idle session. The history snapshot is clamped to
// the completion window here so later calls need no re-checking.
func NewSession(recorder Recorder, speaker Speaker, transcriber Transcriber, completer Completer, sink Sink, opts Options) *Session {
	if len(opts.History) > model.HistoryWindow {
		opts.History = opts.History[len(opts.History)-model.HistoryWindow:]
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Session{
		id:          uuid.NewString(),
		recorder:    recorder,
		speaker:     speaker,
		transcriber: transcriber,
		completer:   completer,
		sink:        sink,
		opts:        opts,
		state:       StateIdle,
	}
}

// ID identifies this session in logs.
func (s *Session) ID() string { return s.id }

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetHistory replaces the completion context used by subsequent cycles.
func (s *Session) SetHistory(turns []model.Turn) {
	if len(turns) > model.HistoryWindow {
		turns = turns[len(turns)-model.HistoryWindow:]
	}
	s.mu.Lock()
	s.opts.History = turns
	s.mu.Unlock()
}

// Start begins recording. Only valid from idle; any other state is a
// silent no-op so a double keypress cannot corrupt the machine. A
// failed microphone probe keeps the session idle with a notice.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if !s.recorder.Available() {
		s.sink.Notice("Microphone unavailable. Install ffmpeg and check your input device.")
		return
	}

	if err := s.recorder.Start(ctx); err != nil {
		slog.Warn("voice recording failed to start", "session", s.id, "error", err)
		s.sink.Notice("Could not start recording.")
		return
	}

	s.setState(StateListening)
}

// Stop ends recording and begins the async transcribe/complete/speak
// pipeline. Only valid from listening.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.closed || s.state != StateListening {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	path, err := s.recorder.Stop()
	if err != nil {
		slog.Warn("voice recording failed to stop", "session", s.id, "error", err)
		s.sink.Notice("Recording failed.")
		s.setState(StateIdle)
		return
	}

	s.setState(StateProcessing)

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	go s.process(gen, path)
}

// CancelSpeaking interrupts playback. Only meaningful while speaking.
func (s *Session) CancelSpeaking() {
	s.mu.Lock()
	if s.state != StateSpeaking {
		s.mu.Unlock()
		return
	}
	s.generation++
	s.mu.Unlock()

	s.speaker.Cancel()
	s.setState(StateIdle)
}

// Close disposes the session: any active recording is stopped and
// discarded, playback is interrupted, and results from requests still
// in flight are dropped when they arrive. In-flight HTTP requests are
// not cancelled.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	wasListening := s.state == StateListening
	s.state = StateIdle
	s.mu.Unlock()

	if wasListening {
		if _, err := s.recorder.Stop(); err != nil {
			slog.Warn("voice recorder stop on close", "session", s.id, "error", err)
		}
	}
	s.speaker.Cancel()
}

// =============================================================================
// ASYNC PIPELINE
// =============================================================================

// process runs off the UI path: transcribe the recording, request a
// completion, speak the reply. Each step re-checks liveness before
// applying its result; a closed or superseded session drops the work.
func (s *Session) process(gen uint64, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()

	transcript, err := s.transcriber.Transcribe(ctx, path)
	if !s.live(gen) {
		return
	}
	if err != nil {
		s.failProcessing(err)
		return
	}

	s.mu.Lock()
	history := s.opts.History
	s.mu.Unlock()

	reply, err := s.completer.Complete(ctx, s.opts.SystemPrompt, history, transcript)
	if !s.live(gen) {
		return
	}
	if err != nil {
		slog.Warn("voice completion failed", "session", s.id, "error", err)
		s.sink.Notice("Sorry, I had trouble responding. Please try again.")
		s.setState(StateIdle)
		return
	}

	if s.opts.OnResult != nil {
		s.opts.OnResult(Result{UserMessage: transcript, AIResponse: reply})
	}

	s.setState(StateSpeaking)
	s.speak(gen, reply)
}

// speak plays the reply and returns the session to idle when playback
// finishes naturally. Cancellation paths go through CancelSpeaking or
// Close, which have already moved the state on.
func (s *Session) speak(gen uint64, reply string) {
	spoken := util.SanitizeForSpeech(reply)
	if spoken != "" {
		if err := s.speaker.Speak(context.Background(), spoken); err != nil {
			slog.Warn("speech playback failed", "session", s.id, "error", err)
		}
	}

	s.mu.Lock()
	if s.closed || s.generation != gen || s.state != StateSpeaking {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.setState(StateIdle)
}

// failProcessing maps pipeline errors to the notice the user sees and
// returns the session to idle. No result pair is emitted.
func (s *Session) failProcessing(err error) {
	switch {
	case errors.Is(err, groq.ErrAudioTooShort):
		s.sink.Notice("Recording too short. Hold the button a little longer.")
	case errors.Is(err, groq.ErrAudioMissing):
		s.sink.Notice("No recording was captured.")
	case errors.Is(err, groq.ErrEmptyTranscript):
		s.sink.Notice("No speech detected. The audio might be too quiet or unclear.")
	case errors.Is(err, groq.ErrNoAPIKey):
		s.sink.Notice("Set your API key before using voice mode.")
	default:
		slog.Warn("voice transcription failed", "session", s.id, "error", err)
		s.sink.Notice("Could not transcribe that. Please try again.")
	}
	s.setState(StateIdle)
}

// live reports whether async work started at generation gen may still
// apply its result.
func (s *Session) live(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.generation == gen
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = next
	s.mu.Unlock()

	s.sink.StateChanged(next)
}
