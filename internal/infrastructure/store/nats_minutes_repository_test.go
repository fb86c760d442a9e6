// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

func TestMinutesRepositoryPutAndGet(t *testing.T) {
	repo := NewNatsMinutesRepository(newMockNatsKeyValue())
	ctx := context.Background()

	minutes := &models.MeetingMinutes{
		MeetingID:    "m1",
		MeetingTitle: "Weekly Sync",
		Date:         time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC),
		Agenda:       []string{"Status updates"},
		ActionItems: []models.ActionItem{
			{Task: "Follow up on deployment", AssignedTo: "alice@example.com"},
		},
	}
	require.NoError(t, repo.Put(ctx, minutes))

	got, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Weekly Sync", got.MeetingTitle)
	require.Len(t, got.ActionItems, 1)
	assert.Equal(t, "alice@example.com", got.ActionItems[0].AssignedTo)

	exists, err := repo.Exists(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMinutesRepositoryGetNotFound(t *testing.T) {
	repo := NewNatsMinutesRepository(newMockNatsKeyValue())
	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrMinutesNotFound)

	exists, err := repo.Exists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMinutesRepositoryPutRequiresMeetingID(t *testing.T) {
	repo := NewNatsMinutesRepository(newMockNatsKeyValue())
	err := repo.Put(context.Background(), &models.MeetingMinutes{})
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestMinutesRepositoryRegenerationOverwrites(t *testing.T) {
	repo := NewNatsMinutesRepository(newMockNatsKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &models.MeetingMinutes{MeetingID: "m1", Summary: "first"}))
	require.NoError(t, repo.Put(ctx, &models.MeetingMinutes{MeetingID: "m1", Summary: "second"}))

	got, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Summary)
}
