// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

func statsRecord(id string, start time.Time, status models.TranscriptionStatus, method models.TranscriptionMethod, minutesGenerated bool) *models.MeetingRecord {
	record := &models.MeetingRecord{
		MeetingID:           id,
		StartTime:           start,
		TranscriptionStatus: status,
		TranscriptionMethod: method,
		MinutesGenerated:    minutesGenerated,
	}
	if status == models.TranscriptionStatusCompleted {
		record.TranscriptText = strings.Repeat("transcript text ", 10)
	}
	return record
}

func TestGetMeetingStats(t *testing.T) {
	day1 := time.Date(2026, 8, 18, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC)

	meetingRepo := &mocks.MockMeetingRepository{}
	meetingRepo.On("ListAll", mock.Anything).Return([]*models.MeetingRecord{
		statsRecord("m1", day1, models.TranscriptionStatusCompleted, models.TranscriptionMethodTeams, true),
		statsRecord("m2", day1, models.TranscriptionStatusCompleted, models.TranscriptionMethodWhisper, false),
		statsRecord("m3", day2, models.TranscriptionStatusPending, "", false),
	}, nil)

	service := NewAnalyticsService(meetingRepo)
	stats, err := service.GetMeetingStats(context.Background(), time.Time{}, time.Time{})

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalMeetings)
	assert.Equal(t, 2, stats.ByStatus[string(models.TranscriptionStatusCompleted)])
	assert.Equal(t, 1, stats.ByStatus[string(models.TranscriptionStatusPending)])
	assert.Equal(t, 1, stats.ByMethod[string(models.TranscriptionMethodTeams)])
	assert.Equal(t, 1, stats.ByMethod[string(models.TranscriptionMethodWhisper)])
	assert.Equal(t, 2, stats.WithTranscript)
	assert.Equal(t, 1, stats.WithMinutes)
	assert.InDelta(t, 2.0/3.0, stats.TranscriptCoverage, 0.001)
	assert.InDelta(t, 1.0/3.0, stats.MinutesCoverage, 0.001)

	require.Len(t, stats.MeetingsPerDay, 2)
	assert.Equal(t, DayCount{Date: "2026-08-19", Count: 1}, stats.MeetingsPerDay[0])
	assert.Equal(t, DayCount{Date: "2026-08-18", Count: 2}, stats.MeetingsPerDay[1])
}

func TestGetMeetingStatsWindowed(t *testing.T) {
	day1 := time.Date(2026, 8, 18, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC)

	meetingRepo := &mocks.MockMeetingRepository{}
	meetingRepo.On("ListAll", mock.Anything).Return([]*models.MeetingRecord{
		statsRecord("m1", day1, models.TranscriptionStatusPending, "", false),
		statsRecord("m2", day2, models.TranscriptionStatusPending, "", false),
	}, nil)

	service := NewAnalyticsService(meetingRepo)
	stats, err := service.GetMeetingStats(context.Background(), day2, time.Time{})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalMeetings)
	require.Len(t, stats.MeetingsPerDay, 1)
	assert.Equal(t, "2026-08-19", stats.MeetingsPerDay[0].Date)
}

func TestGetMeetingStatsEmpty(t *testing.T) {
	meetingRepo := &mocks.MockMeetingRepository{}
	meetingRepo.On("ListAll", mock.Anything).Return([]*models.MeetingRecord{}, nil)

	service := NewAnalyticsService(meetingRepo)
	stats, err := service.GetMeetingStats(context.Background(), time.Time{}, time.Time{})

	require.NoError(t, err)
	assert.Zero(t, stats.TotalMeetings)
	assert.Zero(t, stats.TranscriptCoverage)
	assert.Empty(t, stats.MeetingsPerDay)
}

func TestGetMeetingStatsNotReady(t *testing.T) {
	service := NewAnalyticsService(nil)
	_, err := service.GetMeetingStats(context.Background(), time.Time{}, time.Time{})
	require.Error(t, err)
}
