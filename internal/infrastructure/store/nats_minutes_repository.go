// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

// NatsMinutesRepository is the NATS KV implementation of
// domain.MinutesRepository. Minutes are keyed by meeting id.
type NatsMinutesRepository struct {
	*NatsBaseRepository[models.MeetingMinutes]
}

// NewNatsMinutesRepository creates a new NATS KV minutes repository.
func NewNatsMinutesRepository(kvStore INatsKeyValue) *NatsMinutesRepository {
	return &NatsMinutesRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.MeetingMinutes](kvStore, "meeting minutes"),
	}
}

var _ domain.MinutesRepository = (*NatsMinutesRepository)(nil)

// Get retrieves the minutes for a meeting.
func (r *NatsMinutesRepository) Get(ctx context.Context, meetingID string) (*models.MeetingMinutes, error) {
	minutes, err := r.NatsBaseRepository.Get(ctx, meetingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrMinutesNotFound
		}
		return nil, err
	}
	return minutes, nil
}

// Put stores or replaces the minutes for a meeting. Regeneration overwrites.
func (r *NatsMinutesRepository) Put(ctx context.Context, minutes *models.MeetingMinutes) error {
	if minutes.MeetingID == "" {
		return domain.NewValidationError("meeting minutes require a meeting id")
	}
	return r.NatsBaseRepository.Put(ctx, minutes.MeetingID, minutes)
}

// Exists checks whether minutes exist for a meeting.
func (r *NatsMinutesRepository) Exists(ctx context.Context, meetingID string) (bool, error) {
	return r.NatsBaseRepository.Exists(ctx, meetingID)
}
