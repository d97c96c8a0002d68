// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package groq

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================
//
// Callers branch on these sentinels to decide between "fix your setup" flows
// (missing key, bad recording) and "the network let us down" flows. Transport
// failures carry the operation name so log lines stay useful.

var (
	// ErrNoAPIKey means no credential is stored. The UI reacts by opening
	// the key entry flow instead of showing a generic failure.
	ErrNoAPIKey = errors.New("groq: no API key configured")

	// ErrAudioMissing means the recording file does not exist at the
	// expected path. Usually the recorder never started.
	ErrAudioMissing = errors.New("groq: audio file missing")

	// ErrAudioTooShort means the recording exists but is below the minimum
	// byte threshold. Sending it would waste a round trip on silence.
	ErrAudioTooShort = errors.New("groq: audio recording too short")

	// ErrEmptyTranscript means the API answered but produced no usable
	// text. The voice session treats this the same as a failed request.
	ErrEmptyTranscript = errors.New("groq: transcription produced no text")

	// ErrInvalidKey means a key verification probe was rejected.
	ErrInvalidKey = errors.New("groq: API key rejected")
)

// TransportError wraps a failed HTTP round trip to the Groq API.
type TransportError struct {
	// Op names the operation that failed: "complete", "transcribe", "probe".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("groq: %s request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
