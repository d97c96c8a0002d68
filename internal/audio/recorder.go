// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audio provides microphone capture and speech playback behind
// small interfaces so the voice session can be tested with fakes.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/jeranaias/aira-tui/internal/config"
)

// Recorder captures microphone audio to a file on disk.
type Recorder interface {
	// Available reports whether the recorder can actually capture audio
	// on this machine. Used as the permission / capability probe before
	// offering voice features.
	Available() bool

	// Start begins capturing to the recorder's output path. Any file
	// already at that path is removed first. Only one capture may be
	// active at a time.
	Start(ctx context.Context) error

	// Stop ends the active capture and returns the path of the finished
	// recording. Stop on an idle recorder is an error.
	Stop() (string, error)
}

// =============================================================================
// FFMPEG RECORDER
// =============================================================================

// FFmpegRecorder shells out to ffmpeg to capture mono AAC audio into an
// m4a container. ffmpeg is interrupted (not killed) on Stop so it can
// finalize the container; a killed m4a is unplayable.
type FFmpegRecorder struct {
	command     string
	inputFormat string
	inputDevice string
	sampleRate  int
	outputPath  string

	mu      sync.Mutex
	process *os.Process
	waitErr <-chan error
	stderr  *bytes.Buffer
}

// NewFFmpegRecorder builds a recorder from voice config. The recording
// is always written to outputPath; callers own cleanup of that file.
func NewFFmpegRecorder(cfg config.VoiceConfig, outputPath string) *FFmpegRecorder {
	command := cfg.RecorderCommand
	if command == "" {
		command = "ffmpeg"
	}
	format := cfg.InputFormat
	device := cfg.InputDevice
	if format == "" {
		format, device = defaultInput(runtime.GOOS, device)
	}
	return &FFmpegRecorder{
		command:     command,
		inputFormat: format,
		inputDevice: device,
		sampleRate:  cfg.SampleRate,
		outputPath:  outputPath,
	}
}

// defaultInput picks the ffmpeg capture format for the platform when the
// config leaves it unset. The generic "default" device name only means
// something to pulse/alsa; avfoundation addresses devices by index, so
// the device is remapped along with the format.
func defaultInput(goos, device string) (string, string) {
	switch goos {
	case "darwin":
		if device == "" || device == "default" {
			device = ":0"
		}
		return "avfoundation", device
	default:
		if device == "" {
			device = "default"
		}
		return "pulse", device
	}
}

// Available reports whether the configured capture binary is on PATH.
func (r *FFmpegRecorder) Available() bool {
	_, err := exec.LookPath(r.command)
	return err == nil
}

// OutputPath returns where finished recordings land.
func (r *FFmpegRecorder) OutputPath() string {
	return r.outputPath
}

// captureArgs is the full ffmpeg argument list for one capture.
func (r *FFmpegRecorder) captureArgs() []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", r.inputFormat,
		"-i", r.inputDevice,
		"-ac", "1",
		"-ar", strconv.Itoa(r.sampleRate),
		"-c:a", "aac",
		"-y",
		r.outputPath,
	}
}

func (r *FFmpegRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.process != nil {
		return errors.New("audio: capture already in progress")
	}

	// A stale recording at the output path would be indistinguishable
	// from a fresh one if this capture fails mid-way.
	if err := os.Remove(r.outputPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("audio: remove stale recording: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.command, r.captureArgs()...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("audio: start %s: %w", r.command, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// Catch an immediate exit (bad device, bad format) before reporting
	// the capture as live.
	select {
	case err := <-waitErr:
		if err != nil {
			return fmt.Errorf("audio: %s exited before capture started: %w: %s",
				r.command, err, bytes.TrimSpace(stderr.Bytes()))
		}
		return errors.New("audio: capture process exited immediately")
	case <-time.After(250 * time.Millisecond):
	}

	r.process = cmd.Process
	r.waitErr = waitErr
	r.stderr = &stderr
	return nil
}

func (r *FFmpegRecorder) Stop() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.process == nil {
		return "", errors.New("audio: no capture in progress")
	}

	_ = r.process.Signal(os.Interrupt)

	var stopErr error
	select {
	case err := <-r.waitErr:
		stopErr = normalizeExit(err)
	case <-time.After(2 * time.Second):
		_ = r.process.Kill()
		stopErr = normalizeExit(<-r.waitErr)
	}

	if stopErr != nil && r.stderr != nil && r.stderr.Len() > 0 {
		stopErr = fmt.Errorf("%w: %s", stopErr, bytes.TrimSpace(r.stderr.Bytes()))
	}

	r.process = nil
	r.waitErr = nil
	r.stderr = nil

	if stopErr != nil {
		return "", stopErr
	}
	return r.outputPath, nil
}

// normalizeExit drops the exit-status error ffmpeg reports when it is
// interrupted; that is the normal end of a capture, not a failure.
func normalizeExit(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
