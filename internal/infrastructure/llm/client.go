// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package llm is a chat-completions client for OpenAI-compatible endpoints.
// The minutes generator uses it to turn transcripts into structured minutes.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
)

const (
	// DefaultBaseURL is the default OpenAI-compatible API base URL.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the default chat model.
	DefaultModel = "gpt-4o-mini"
	// DefaultTimeout bounds a single completion call.
	DefaultTimeout = 2 * time.Minute
	// DefaultMaxTokens bounds the generated output.
	DefaultMaxTokens = 4096
)

// Config holds the configuration for the chat client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Client calls a chat-completions endpoint. It implements
// domain.ChatCompleter.
type Client struct {
	httpClient *http.Client
	config     Config
}

var _ domain.ChatCompleter = (*Client)(nil)

// NewClient creates a new chat client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		config: config,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends a system and user prompt and returns the generated text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.config.APIKey == "" {
		return "", domain.NewUnauthenticatedError("chat API key not configured")
	}

	messages := []chatMessage{}
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	body, err := json.Marshal(chatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewTransientError("chat request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", domain.NewUnauthenticatedError("chat API key rejected")
	}
	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.WarnContext(ctx, "chat endpoint returned error",
			"status", resp.StatusCode,
			"body", strings.TrimSpace(string(errBody)),
		)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", domain.NewTransientError(
				fmt.Sprintf("chat endpoint error (status %d)", resp.StatusCode))
		}
		return "", domain.NewInternalError(
			fmt.Sprintf("chat endpoint error (status %d)", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", domain.NewInternalError("failed to decode chat response", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", domain.NewInternalError("chat endpoint returned no content")
	}

	content := parsed.Choices[0].Message.Content
	slog.DebugContext(ctx, "chat completion received", "length", len(content))
	return content, nil
}
