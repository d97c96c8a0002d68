// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package groq talks to Groq's OpenAI-compatible API: chat completions,
// Whisper transcription, and key verification probes. All network calls are
// single-attempt; retry policy belongs to the caller, not the transport.
package groq

import (
	"context"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jeranaias/aira-tui/internal/config"
	"github.com/jeranaias/aira-tui/internal/model"
)

// FallbackEmptyResponse is shown when the API answers successfully but
// returns no choices. It is appended to history like any assistant turn.
const FallbackEmptyResponse = "Sorry, I could not generate a response."

// =============================================================================
// CLIENT
// =============================================================================

// Client is a thin wrapper over the OpenAI-compatible SDK pointed at Groq.
// It is safe for concurrent use.
type Client struct {
	api *openai.Client
	cfg *config.Config
}

// New builds a Client for the given API key using cfg for the base URL,
// model names, and sampling parameters.
func New(key string, cfg *config.Config) *Client {
	oc := openai.DefaultConfig(key)
	oc.BaseURL = cfg.API.BaseURL
	return &Client{
		api: openai.NewClientWithConfig(oc),
		cfg: cfg,
	}
}

// Complete sends one chat completion: system prompt, up to the trailing
// history window, then the user's message. Returns the trimmed assistant
// reply, or FallbackEmptyResponse when the API returns no choices.
//
// history must already be windowed by the caller; Complete re-clamps it
// as a safety net so an oversized slice can never inflate the request.
func (c *Client) Complete(ctx context.Context, system string, history []model.Turn, user string) (string, error) {
	if len(history) > model.HistoryWindow {
		history = history[len(history)-model.HistoryWindow:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.API.ChatModel,
		Messages:    messages,
		Temperature: float32(c.cfg.API.Temperature),
		MaxTokens:   c.cfg.API.MaxTokens,
	})
	if err != nil {
		return "", &TransportError{Op: "complete", Err: err}
	}

	if len(resp.Choices) == 0 {
		slog.Warn("chat completion returned no choices", "model", c.cfg.API.ChatModel)
		return FallbackEmptyResponse, nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
