// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

// NatsMeetingRepository is the NATS KV implementation of
// domain.MeetingRepository. Records are keyed by external meeting id.
type NatsMeetingRepository struct {
	*NatsBaseRepository[models.MeetingRecord]
}

// NewNatsMeetingRepository creates a new NATS KV meetings repository.
func NewNatsMeetingRepository(kvStore INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.MeetingRecord](kvStore, "meeting record"),
	}
}

var _ domain.MeetingRepository = (*NatsMeetingRepository)(nil)

// Create persists a new meeting record. An existing id is a conflict, which
// keeps repeated calendar syncs idempotent.
func (r *NatsMeetingRepository) Create(ctx context.Context, record *models.MeetingRecord) error {
	if record.MeetingID == "" {
		return domain.NewValidationError("meeting record requires a meeting id")
	}

	exists, err := r.NatsBaseRepository.Exists(ctx, record.MeetingID)
	if err != nil {
		return err
	}
	if exists {
		return domain.NewConflictError("meeting record already exists")
	}

	now := time.Now().UTC()
	record.CreatedAt = &now
	record.UpdatedAt = &now
	return r.NatsBaseRepository.Put(ctx, record.MeetingID, record)
}

// Exists checks whether a meeting record exists.
func (r *NatsMeetingRepository) Exists(ctx context.Context, meetingID string) (bool, error) {
	return r.NatsBaseRepository.Exists(ctx, meetingID)
}

// Get retrieves a meeting record by id.
func (r *NatsMeetingRepository) Get(ctx context.Context, meetingID string) (*models.MeetingRecord, error) {
	record, _, err := r.GetWithRevision(ctx, meetingID)
	return record, err
}

// GetWithRevision retrieves a meeting record with its KV revision for
// subsequent optimistic updates.
func (r *NatsMeetingRepository) GetWithRevision(ctx context.Context, meetingID string) (*models.MeetingRecord, uint64, error) {
	record, revision, err := r.NatsBaseRepository.GetWithRevision(ctx, meetingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, 0, domain.ErrMeetingNotFound
		}
		return nil, 0, err
	}
	return record, revision, nil
}

// Update updates a meeting record using optimistic concurrency control.
func (r *NatsMeetingRepository) Update(ctx context.Context, record *models.MeetingRecord, revision uint64) error {
	if record.MeetingID == "" {
		return domain.NewValidationError("meeting record requires a meeting id")
	}

	now := time.Now().UTC()
	record.UpdatedAt = &now
	return r.NatsBaseRepository.Update(ctx, record.MeetingID, record, revision)
}

// ListAll returns every stored meeting record.
func (r *NatsMeetingRepository) ListAll(ctx context.Context) ([]*models.MeetingRecord, error) {
	return r.ListEntities(ctx)
}

// ListMissingTranscripts returns records scheduled at or after the cutoff
// whose transcript is absent, empty, or the legacy sentinel.
func (r *NatsMeetingRepository) ListMissingTranscripts(ctx context.Context, cutoff time.Time) ([]*models.MeetingRecord, error) {
	records, err := r.ListEntities(ctx)
	if err != nil {
		return nil, err
	}

	var missing []*models.MeetingRecord
	for _, record := range records {
		if record.StartTime.Before(cutoff) {
			continue
		}
		if record.HasUsableTranscript() {
			continue
		}
		missing = append(missing, record)
	}
	return missing, nil
}
