// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package messaging publishes service events over core NATS subjects.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
)

// NATS subjects for service events and requests.
const (
	TranscriptCompletedSubject = "lfx.minutes-service.transcript.completed"
	MinutesGeneratedSubject    = "lfx.minutes-service.minutes.generated"

	// MeetingStatsSubject answers requests with an aggregate stats snapshot.
	MeetingStatsSubject = "lfx.minutes-service.meetings.stats"
)

// INatsConn is the NATS connection interface the publisher needs. It allows
// for mocking in tests.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// NatsPublisher implements domain.MessagePublisher over core NATS.
type NatsPublisher struct {
	natsConn INatsConn
}

// NewNatsPublisher creates a new NATS event publisher.
func NewNatsPublisher(natsConn INatsConn) *NatsPublisher {
	return &NatsPublisher{natsConn: natsConn}
}

var _ domain.MessagePublisher = (*NatsPublisher)(nil)

// publish marshals and sends one event. Events are best effort; callers log
// and continue on failure.
func (p *NatsPublisher) publish(ctx context.Context, subject string, event any) error {
	if p.natsConn == nil || !p.natsConn.IsConnected() {
		return domain.ErrServiceUnavailable
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling event into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	if err := p.natsConn.Publish(subject, data); err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}

	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// PublishTranscriptCompleted publishes a transcript.completed event.
func (p *NatsPublisher) PublishTranscriptCompleted(ctx context.Context, event models.TranscriptCompletedEvent) error {
	return p.publish(ctx, TranscriptCompletedSubject, event)
}

// PublishMinutesGenerated publishes a minutes.generated event.
func (p *NatsPublisher) PublishMinutesGenerated(ctx context.Context, event models.MinutesGeneratedEvent) error {
	return p.publish(ctx, MinutesGeneratedSubject, event)
}
