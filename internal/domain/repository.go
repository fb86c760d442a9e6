// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package domain contains the domain types and collaborator interfaces for
// the minutes service.
package domain

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

// MeetingRepository is the persistence interface for meeting records, keyed
// by the external meeting id.
type MeetingRepository interface {
	// Create persists a new record. Creating an id that already exists
	// returns a conflict error so that repeated syncs are idempotent no-ops
	// for the caller.
	Create(ctx context.Context, record *models.MeetingRecord) error
	Exists(ctx context.Context, meetingID string) (bool, error)
	Get(ctx context.Context, meetingID string) (*models.MeetingRecord, error)
	GetWithRevision(ctx context.Context, meetingID string) (*models.MeetingRecord, uint64, error)
	Update(ctx context.Context, record *models.MeetingRecord, revision uint64) error
	ListAll(ctx context.Context) ([]*models.MeetingRecord, error)
	// ListMissingTranscripts returns records scheduled at or after the cutoff
	// whose transcript is absent, empty, or the legacy sentinel.
	ListMissingTranscripts(ctx context.Context, cutoff time.Time) ([]*models.MeetingRecord, error)
}

// TokenRepository persists delegated user credentials.
type TokenRepository interface {
	Get(ctx context.Context, userID string) (*models.UserToken, error)
	Put(ctx context.Context, token *models.UserToken) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

// MinutesRepository persists generated meeting minutes, keyed by meeting id.
type MinutesRepository interface {
	Get(ctx context.Context, meetingID string) (*models.MeetingMinutes, error)
	Put(ctx context.Context, minutes *models.MeetingMinutes) error
	Exists(ctx context.Context, meetingID string) (bool, error)
}
