// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package groq

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// =============================================================================
// KEY VERIFICATION
// =============================================================================

// probeMessage is a minimal request body used only to confirm the key is
// accepted. A small, widely available model keeps the probe cheap.
const (
	probeModel   = "llama3-8b-8192"
	probeMessage = "Hello, this is a test message."
	probeTokens  = 50
)

// VerifyKey checks candidate key against the live API by issuing a tiny
// completion. A rejected key returns ErrInvalidKey; network trouble
// returns a TransportError so the caller can distinguish "bad key" from
// "no connectivity". model overrides the default probe model when
// non-empty.
func VerifyKey(ctx context.Context, key, baseURL, model string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if model == "" {
		model = probeModel
	}

	oc := openai.DefaultConfig(key)
	oc.BaseURL = baseURL
	api := openai.NewClientWithConfig(oc)

	resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: probeMessage},
		},
		MaxTokens: probeTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403) {
			return fmt.Errorf("%w: %s", ErrInvalidKey, apiErr.Message)
		}
		return &TransportError{Op: "probe", Err: err}
	}
	if len(resp.Choices) == 0 {
		return &TransportError{Op: "probe", Err: fmt.Errorf("empty response")}
	}
	return nil
}
