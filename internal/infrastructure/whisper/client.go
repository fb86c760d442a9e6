// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package whisper transcribes meeting audio through an OpenAI-compatible
// transcription endpoint. It backs the resolver's recording fallback when a
// meeting produced no caption transcript.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
)

const (
	// DefaultBaseURL is the default OpenAI-compatible API base URL.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the default transcription model.
	DefaultModel = "whisper-1"
	// DefaultTimeout allows for large uploads and slow transcription.
	DefaultTimeout = 10 * time.Minute
	// MaxAudioBytes is the upload ceiling the endpoint enforces.
	MaxAudioBytes = 25 * 1024 * 1024
)

// Config holds the configuration for the transcription client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the transcription endpoint. It implements
// domain.AudioTranscriber.
type Client struct {
	httpClient *http.Client
	config     Config
}

var _ domain.AudioTranscriber = (*Client)(nil)

// NewClient creates a new transcription client.
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

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		config: config,
	}
}

// transcriptionResponse is the verbose_json response shape.
type transcriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// TranscribeBytes transcribes in-memory audio. A nil result with a nil error
// means the audio produced nothing usable; callers fall through to their next
// transcript source.
func (c *Client) TranscribeBytes(ctx context.Context, audio []byte, filename, languageHint string) (*domain.TranscriptionResult, error) {
	if c.config.APIKey == "" {
		return nil, domain.NewUnauthenticatedError("transcription API key not configured")
	}
	if len(audio) == 0 {
		return nil, nil
	}
	if len(audio) > MaxAudioBytes {
		return nil, domain.NewValidationError(
			fmt.Sprintf("audio exceeds upload limit: %d bytes", len(audio)))
	}
	if filename == "" {
		filename = "audio.mp4"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model", c.config.Model); err != nil {
		return nil, fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("failed to write response_format field: %w", err)
	}
	if languageHint != "" {
		if err := writer.WriteField("language", languageHint); err != nil {
			return nil, fmt.Errorf("failed to write language field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/audio/transcriptions", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	slog.DebugContext(ctx, "submitting audio for transcription",
		"filename", filename,
		"bytes", len(audio),
		"model", c.config.Model,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewTransientError("transcription request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.NewUnauthenticatedError("transcription API key rejected")
	}
	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.WarnContext(ctx, "transcription endpoint returned error",
			"status", resp.StatusCode,
			"body", string(errBody),
		)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, domain.NewTransientError(
				fmt.Sprintf("transcription endpoint error (status %d)", resp.StatusCode))
		}
		return nil, domain.NewInternalError(
			fmt.Sprintf("transcription endpoint error (status %d)", resp.StatusCode))
	}

	var parsed transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, domain.NewInternalError("failed to decode transcription response", err)
	}

	if parsed.Text == "" {
		slog.InfoContext(ctx, "transcription produced no text", "filename", filename)
		return nil, nil
	}

	slog.InfoContext(ctx, "audio transcribed",
		"filename", filename,
		"text_length", len(parsed.Text),
		"language", parsed.Language,
	)
	return &domain.TranscriptionResult{
		Text:     parsed.Text,
		Language: parsed.Language,
		Duration: parsed.Duration,
	}, nil
}

// TranscribeFile transcribes an audio file on disk.
func (c *Client) TranscribeFile(ctx context.Context, path, languageHint string) (*domain.TranscriptionResult, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read audio file", "path", path, logging.ErrKey, err)
		return nil, domain.NewValidationError("failed to read audio file", err)
	}
	return c.TranscribeBytes(ctx, audio, filepath.Base(path), languageHint)
}
