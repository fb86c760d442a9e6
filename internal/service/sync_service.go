// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/infrastructure/graph"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-minutes-service/pkg/concurrent"
)

// syncWorkerCount bounds the concurrent record writes during a sync sweep.
const syncWorkerCount = 5

// SyncResult summarizes one calendar sync sweep.
type SyncResult struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// SyncService pulls calendar events for a window and materializes meeting
// records for them. Existing records are left untouched, so repeated syncs
// over overlapping windows are idempotent.
type SyncService struct {
	GraphClient       graph.ClientAPI
	MeetingRepository domain.MeetingRepository
	TokenProvider     domain.TokenProvider
	pool              *concurrent.WorkerPool
}

// NewSyncService creates a new SyncService.
func NewSyncService(graphClient graph.ClientAPI, meetingRepository domain.MeetingRepository, tokenProvider domain.TokenProvider) *SyncService {
	return &SyncService{
		GraphClient:       graphClient,
		MeetingRepository: meetingRepository,
		TokenProvider:     tokenProvider,
		pool:              concurrent.NewWorkerPool(syncWorkerCount),
	}
}

// ServiceReady checks if the service is ready for use.
func (s *SyncService) ServiceReady() bool {
	return s.GraphClient != nil &&
		s.MeetingRepository != nil &&
		s.TokenProvider != nil
}

// SyncCalendar fetches the credential holder's calendar view for the window
// and creates a meeting record per event that does not have one yet.
func (s *SyncService) SyncCalendar(ctx context.Context, userID string, start, end time.Time) (*SyncResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if !end.After(start) {
		return nil, domain.NewValidationError("sync window end must be after start")
	}

	token, err := s.TokenProvider.GetValidAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := s.GraphClient.ListCalendarView(ctx, token, start, end)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Fetched: len(events)}
	if len(events) == 0 {
		return result, nil
	}

	type outcome int
	const (
		outcomeCreated outcome = iota
		outcomeSkipped
		outcomeFailed
	)
	outcomes := make([]outcome, len(events))

	functions := make([]func() error, 0, len(events))
	for i, event := range events {
		functions = append(functions, func() error {
			record, err := s.buildRecord(&event)
			if err != nil {
				slog.WarnContext(ctx, "skipping unusable calendar event",
					"event_id", event.ID,
					logging.ErrKey, err,
				)
				outcomes[i] = outcomeSkipped
				return nil
			}

			err = s.MeetingRepository.Create(ctx, record)
			switch {
			case err == nil:
				outcomes[i] = outcomeCreated
			case domain.GetErrorType(err) == domain.ErrorTypeConflict:
				outcomes[i] = outcomeSkipped
			default:
				slog.ErrorContext(ctx, "creating meeting record failed",
					"meeting_id", record.MeetingID,
					logging.ErrKey, err,
				)
				outcomes[i] = outcomeFailed
			}
			return nil
		})
	}

	// RunAll keeps going past individual failures; errors were already
	// handled per event.
	s.pool.RunAll(ctx, functions...)

	for _, o := range outcomes {
		switch o {
		case outcomeCreated:
			result.Created++
		case outcomeSkipped:
			result.Skipped++
		case outcomeFailed:
			result.Failed++
		}
	}

	slog.InfoContext(ctx, "calendar sync finished",
		"user_id", userID,
		"fetched", result.Fetched,
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

// buildRecord converts a calendar event into a pending meeting record.
func (s *SyncService) buildRecord(event *graph.CalendarEvent) (*models.MeetingRecord, error) {
	if event.ID == "" {
		return nil, domain.NewValidationError("calendar event has no id")
	}

	start, err := event.Start.Time()
	if err != nil {
		return nil, domain.NewValidationError("calendar event has no usable start time", err)
	}

	duration := 60
	if end, err := event.End.Time(); err == nil && end.After(start) {
		duration = int(end.Sub(start) / time.Minute)
	}

	participants := make([]models.Participant, 0, len(event.Attendees))
	for _, a := range event.Attendees {
		if a.EmailAddress == nil || a.EmailAddress.Address == "" {
			continue
		}
		participants = append(participants, models.Participant{
			Name:  a.EmailAddress.Name,
			Email: strings.ToLower(a.EmailAddress.Address),
			Role:  a.Type,
		})
	}

	record := &models.MeetingRecord{
		MeetingID:           event.ID,
		Title:               event.Subject,
		StartTime:           start,
		DurationMinutes:     duration,
		Participants:        participants,
		JoinURL:             event.JoinURL(),
		TranscriptionStatus: models.TranscriptionStatusPending,
	}
	if event.Body != nil && strings.EqualFold(event.Body.ContentType, "html") {
		record.BodyHTML = event.Body.Content
	}
	return record, nil
}
