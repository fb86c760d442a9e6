// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// TranscriptCompletedEvent is published when the scheduler persists a usable
// transcript for a meeting record.
type TranscriptCompletedEvent struct {
	MeetingID        string              `json:"meeting_id"`
	Method           TranscriptionMethod `json:"method"`
	TranscriptLength int                 `json:"transcript_length"`
	CompletedAt      time.Time           `json:"completed_at"`
}

// MinutesGeneratedEvent is published when structured minutes are stored for a
// meeting record.
type MinutesGeneratedEvent struct {
	MeetingID       string    `json:"meeting_id"`
	ActionItemCount int       `json:"action_item_count"`
	Fallback        bool      `json:"fallback"`
	GeneratedAt     time.Time `json:"generated_at"`
}
