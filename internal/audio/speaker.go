// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sync"
	"time"
	"unicode/utf8"
)

// Speaker renders text as speech. Speak blocks until playback finishes,
// the context is cancelled, or Cancel is called.
type Speaker interface {
	Available() bool
	Speak(ctx context.Context, text string) error
	// Cancel interrupts an in-flight Speak. Safe to call when idle.
	Cancel()
}

// =============================================================================
// EXEC SPEAKER
// =============================================================================

// ExecSpeaker shells out to the platform speech synthesizer: `say` on
// macOS, `espeak` elsewhere. The platform default voice is used.
type ExecSpeaker struct {
	command string
	args    []string

	mu      sync.Mutex
	process interface{ Kill() error }
}

// NewExecSpeaker builds a speaker for this platform. command overrides
// the default binary when non-empty.
func NewExecSpeaker(command string) *ExecSpeaker {
	if command == "" {
		if runtime.GOOS == "darwin" {
			command = "say"
		} else {
			command = "espeak"
		}
	}
	return &ExecSpeaker{command: command}
}

func (s *ExecSpeaker) Available() bool {
	_, err := exec.LookPath(s.command)
	return err == nil
}

func (s *ExecSpeaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, s.command, text)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("audio: start %s: %w", s.command, err)
	}

	s.mu.Lock()
	s.process = cmd.Process
	s.mu.Unlock()

	err := cmd.Wait()

	s.mu.Lock()
	s.process = nil
	s.mu.Unlock()

	// Cancellation surfaces as a kill; that is a normal interrupt, not
	// a playback failure.
	if ctx.Err() != nil {
		return nil
	}
	return normalizeExit(err)
}

func (s *ExecSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.process != nil {
		_ = s.process.Kill()
	}
}

// =============================================================================
// DWELL SPEAKER
// =============================================================================

// DwellSpeaker is the fallback when no synthesizer binary is installed.
// It "speaks" by pausing long enough for the user to read the reply, so
// the session state machine still moves through its speaking state.
type DwellSpeaker struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewDwellSpeaker returns a speaker that pauses instead of speaking.
func NewDwellSpeaker() *DwellSpeaker {
	return &DwellSpeaker{}
}

func (s *DwellSpeaker) Available() bool { return true }

func (s *DwellSpeaker) Speak(ctx context.Context, text string) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	select {
	case <-time.After(dwellFor(text)):
	case <-ctx.Done():
	}
	return nil
}

func (s *DwellSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// dwellFor scales the pause with reply length, clamped to a range that
// feels like speech pacing rather than a stall.
func dwellFor(text string) time.Duration {
	d := time.Duration(utf8.RuneCountInString(text)) * 40 * time.Millisecond
	if d < 2*time.Second {
		d = 2 * time.Second
	}
	if d > 15*time.Second {
		d = 15 * time.Second
	}
	return d
}
