// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

// MessagePublisher emits service events for downstream consumers. Publishing
// is best effort: failures are logged by implementations and never abort the
// cycle that produced the event.
type MessagePublisher interface {
	PublishTranscriptCompleted(ctx context.Context, event models.TranscriptCompletedEvent) error
	PublishMinutesGenerated(ctx context.Context, event models.MinutesGeneratedEvent) error
}
