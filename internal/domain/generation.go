// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

// ChatCompleter is a text-generation backend. Implementations wrap an
// OpenAI-compatible chat-completions endpoint.
type ChatCompleter interface {
	// Complete sends a system and user prompt and returns the generated text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// MinutesGenerator turns a meeting transcript into structured minutes. The
// scheduler invokes it after a transcript lands.
type MinutesGenerator interface {
	// GenerateMinutes produces structured minutes for the meeting. It never
	// fails outright on generation problems; a deterministic fallback
	// structure is returned instead.
	GenerateMinutes(ctx context.Context, record *models.MeetingRecord) (*models.MeetingMinutes, error)

	// SummarizeTranscript produces a short prose summary of a transcript.
	SummarizeTranscript(ctx context.Context, transcript string) (string, error)
}
