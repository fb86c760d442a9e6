// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
)

// MeetingStats is an aggregate snapshot over all stored meeting records.
type MeetingStats struct {
	TotalMeetings      int            `json:"total_meetings"`
	ByStatus           map[string]int `json:"by_status"`
	ByMethod           map[string]int `json:"by_method"`
	WithTranscript     int            `json:"with_transcript"`
	WithMinutes        int            `json:"with_minutes"`
	TranscriptCoverage float64        `json:"transcript_coverage"`
	MinutesCoverage    float64        `json:"minutes_coverage"`
	// MeetingsPerDay counts meetings by start date, most recent first.
	MeetingsPerDay []DayCount `json:"meetings_per_day"`
}

// DayCount is a per-day meeting count.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AnalyticsService computes aggregate statistics over stored meeting records.
// Aggregation happens in memory; the record volume for a tenant is small.
type AnalyticsService struct {
	MeetingRepository domain.MeetingRepository
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(meetingRepository domain.MeetingRepository) *AnalyticsService {
	return &AnalyticsService{
		MeetingRepository: meetingRepository,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *AnalyticsService) ServiceReady() bool {
	return s.MeetingRepository != nil
}

// GetMeetingStats aggregates all records into a stats snapshot. An optional
// window restricts aggregation to meetings starting within [since, until);
// zero bounds are open.
func (s *AnalyticsService) GetMeetingStats(ctx context.Context, since, until time.Time) (*MeetingStats, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	records, err := s.MeetingRepository.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &MeetingStats{
		ByStatus: make(map[string]int),
		ByMethod: make(map[string]int),
	}
	perDay := make(map[string]int)

	for _, record := range records {
		if !since.IsZero() && record.StartTime.Before(since) {
			continue
		}
		if !until.IsZero() && !record.StartTime.Before(until) {
			continue
		}

		stats.TotalMeetings++
		stats.ByStatus[string(record.TranscriptionStatus)]++
		if record.TranscriptionMethod != "" {
			stats.ByMethod[string(record.TranscriptionMethod)]++
		}
		if record.HasUsableTranscript() {
			stats.WithTranscript++
		}
		if record.MinutesGenerated {
			stats.WithMinutes++
		}
		perDay[record.StartTime.UTC().Format("2006-01-02")]++
	}

	if stats.TotalMeetings > 0 {
		stats.TranscriptCoverage = float64(stats.WithTranscript) / float64(stats.TotalMeetings)
		stats.MinutesCoverage = float64(stats.WithMinutes) / float64(stats.TotalMeetings)
	}

	stats.MeetingsPerDay = make([]DayCount, 0, len(perDay))
	for date, count := range perDay {
		stats.MeetingsPerDay = append(stats.MeetingsPerDay, DayCount{Date: date, Count: count})
	}
	sort.Slice(stats.MeetingsPerDay, func(i, j int) bool {
		return stats.MeetingsPerDay[i].Date > stats.MeetingsPerDay[j].Date
	})

	return stats, nil
}
