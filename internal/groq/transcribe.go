// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package groq

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// =============================================================================
// WHISPER TRANSCRIPTION
// =============================================================================

// Transcribe uploads the recording at path and returns the trimmed
// transcript text.
//
// Local checks run before any network traffic: a missing file returns
// ErrAudioMissing, and a file below the configured minimum size returns
// ErrAudioTooShort. A successful response whose text is empty or
// whitespace-only returns ErrEmptyTranscript.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrAudioMissing
		}
		return "", fmt.Errorf("stat recording: %w", err)
	}
	if info.Size() < c.cfg.Voice.MinRecordingBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrAudioTooShort, info.Size())
	}

	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:       c.cfg.API.TranscribeModel,
		FilePath:    path,
		Temperature: 0,
		Format:      openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", &TransportError{Op: "transcribe", Err: err}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
