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

func newTestMeetingRepo() (*NatsMeetingRepository, *mockNatsKeyValue) {
	kv := newMockNatsKeyValue()
	return NewNatsMeetingRepository(kv), kv
}

func testRecord(id string, start time.Time) *models.MeetingRecord {
	return &models.MeetingRecord{
		MeetingID:       id,
		Title:           "Weekly Sync",
		StartTime:       start,
		DurationMinutes: 30,
		Participants: []models.Participant{
			{Email: "alice@example.com"},
			{Email: "bob@example.com"},
		},
		JoinURL:             "https://teams.test/l/meetup-join/" + id,
		TranscriptionStatus: models.TranscriptionStatusPending,
	}
}

func TestMeetingRepositoryCreateAndGet(t *testing.T) {
	repo, _ := newTestMeetingRepo()
	ctx := context.Background()
	start := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)

	err := repo.Create(ctx, testRecord("m1", start))
	require.NoError(t, err)

	got, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.MeetingID)
	assert.Equal(t, "Weekly Sync", got.Title)
	assert.NotNil(t, got.CreatedAt)
	assert.NotNil(t, got.UpdatedAt)
}

func TestMeetingRepositoryCreateDuplicateConflicts(t *testing.T) {
	repo, _ := newTestMeetingRepo()
	ctx := context.Background()
	start := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, testRecord("m1", start)))

	err := repo.Create(ctx, testRecord("m1", start))
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestMeetingRepositoryCreateRequiresID(t *testing.T) {
	repo, _ := newTestMeetingRepo()
	err := repo.Create(context.Background(), &models.MeetingRecord{})
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestMeetingRepositoryGetNotFound(t *testing.T) {
	repo, _ := newTestMeetingRepo()
	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
}

func TestMeetingRepositoryUpdateWithRevision(t *testing.T) {
	repo, _ := newTestMeetingRepo()
	ctx := context.Background()
	start := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, testRecord("m1", start)))

	record, revision, err := repo.GetWithRevision(ctx, "m1")
	require.NoError(t, err)

	record.TranscriptText = "a transcript long enough to count as meaningful content for the record"
	record.TranscriptionStatus = models.TranscriptionStatusCompleted
	require.NoError(t, repo.Update(ctx, record, revision))

	got, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, got.HasUsableTranscript())

	// Stale revision conflicts.
	err = repo.Update(ctx, record, revision)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestMeetingRepositoryListMissingTranscripts(t *testing.T) {
	repo, _ := newTestMeetingRepo()
	ctx := context.Background()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-24 * time.Hour)

	recent := testRecord("recent-missing", now.Add(-2*time.Hour))
	require.NoError(t, repo.Create(ctx, recent))

	sentinel := testRecord("recent-sentinel", now.Add(-3*time.Hour))
	sentinel.TranscriptText = models.TranscriptNotAvailable
	require.NoError(t, repo.Create(ctx, sentinel))

	short := testRecord("recent-short", now.Add(-4*time.Hour))
	short.TranscriptText = "too short"
	require.NoError(t, repo.Create(ctx, short))

	done := testRecord("recent-done", now.Add(-5*time.Hour))
	done.TranscriptText = "a transcript long enough to count as meaningful content for the record"
	require.NoError(t, repo.Create(ctx, done))

	old := testRecord("old-missing", now.Add(-48*time.Hour))
	require.NoError(t, repo.Create(ctx, old))

	missing, err := repo.ListMissingTranscripts(ctx, cutoff)
	require.NoError(t, err)

	ids := make([]string, 0, len(missing))
	for _, m := range missing {
		ids = append(ids, m.MeetingID)
	}
	assert.ElementsMatch(t, []string{"recent-missing", "recent-sentinel", "recent-short"}, ids)
}

func TestMeetingRepositoryNotReady(t *testing.T) {
	repo := NewNatsMeetingRepository(nil)
	_, err := repo.Get(context.Background(), "m1")
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
