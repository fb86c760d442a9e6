// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package mocks provides a function-field mock of the provider API client
// for resolver and scheduler tests.
package mocks

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/infrastructure/graph"
)

// MockClient is a mock implementation of graph.ClientAPI. Unset funcs return
// empty-but-successful defaults, so tests only wire the calls they exercise.
type MockClient struct {
	ListCalendarViewFunc          func(ctx context.Context, token string, start, end time.Time) ([]graph.CalendarEvent, error)
	GetEventFunc                  func(ctx context.Context, token, eventID string) (*graph.CalendarEvent, error)
	GetEventOnlineMeetingFunc     func(ctx context.Context, token, eventID string) (*graph.EventOnlineMeetingInfo, error)
	GetOnlineMeetingByJoinURLFunc func(ctx context.Context, token, joinURL string) (*graph.OnlineMeeting, error)
	ListOnlineMeetingsFunc        func(ctx context.Context, token string) ([]graph.OnlineMeeting, error)
	ListTranscriptsFunc           func(ctx context.Context, token, meetingID string) ([]graph.Transcript, error)
	GetTranscriptContentFunc      func(ctx context.Context, token, meetingID, transcriptID, format string) (string, error)
	ListRecordingsFunc            func(ctx context.Context, token, meetingID string) ([]graph.Recording, error)
	DownloadRecordingFunc         func(ctx context.Context, token, meetingID, recordingID string) ([]byte, error)
	CreatePlannerTaskFunc         func(ctx context.Context, token string, request *graph.CreatePlannerTaskRequest) (*graph.PlannerTask, error)
	SendMailFunc                  func(ctx context.Context, token, toEmail, subject, body string) error

	// Calls records the method names invoked, in order.
	Calls []string
}

var _ graph.ClientAPI = (*MockClient)(nil)

func (m *MockClient) record(name string) {
	m.Calls = append(m.Calls, name)
}

// CallCount returns how many times the named method was invoked.
func (m *MockClient) CallCount(name string) int {
	count := 0
	for _, c := range m.Calls {
		if c == name {
			count++
		}
	}
	return count
}

func (m *MockClient) ListCalendarView(ctx context.Context, token string, start, end time.Time) ([]graph.CalendarEvent, error) {
	m.record("ListCalendarView")
	if m.ListCalendarViewFunc != nil {
		return m.ListCalendarViewFunc(ctx, token, start, end)
	}
	return nil, nil
}

func (m *MockClient) GetEvent(ctx context.Context, token, eventID string) (*graph.CalendarEvent, error) {
	m.record("GetEvent")
	if m.GetEventFunc != nil {
		return m.GetEventFunc(ctx, token, eventID)
	}
	return nil, domain.NewNotFoundError("event not found")
}

func (m *MockClient) GetEventOnlineMeeting(ctx context.Context, token, eventID string) (*graph.EventOnlineMeetingInfo, error) {
	m.record("GetEventOnlineMeeting")
	if m.GetEventOnlineMeetingFunc != nil {
		return m.GetEventOnlineMeetingFunc(ctx, token, eventID)
	}
	return nil, domain.NewNotFoundError("event has no online meeting")
}

func (m *MockClient) GetOnlineMeetingByJoinURL(ctx context.Context, token, joinURL string) (*graph.OnlineMeeting, error) {
	m.record("GetOnlineMeetingByJoinURL")
	if m.GetOnlineMeetingByJoinURLFunc != nil {
		return m.GetOnlineMeetingByJoinURLFunc(ctx, token, joinURL)
	}
	return nil, domain.NewNotFoundError("no online meeting matches join URL")
}

func (m *MockClient) ListOnlineMeetings(ctx context.Context, token string) ([]graph.OnlineMeeting, error) {
	m.record("ListOnlineMeetings")
	if m.ListOnlineMeetingsFunc != nil {
		return m.ListOnlineMeetingsFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockClient) ListTranscripts(ctx context.Context, token, meetingID string) ([]graph.Transcript, error) {
	m.record("ListTranscripts")
	if m.ListTranscriptsFunc != nil {
		return m.ListTranscriptsFunc(ctx, token, meetingID)
	}
	return nil, nil
}

func (m *MockClient) GetTranscriptContent(ctx context.Context, token, meetingID, transcriptID, format string) (string, error) {
	m.record("GetTranscriptContent")
	if m.GetTranscriptContentFunc != nil {
		return m.GetTranscriptContentFunc(ctx, token, meetingID, transcriptID, format)
	}
	return "", domain.NewNotFoundError("transcript content unavailable")
}

func (m *MockClient) ListRecordings(ctx context.Context, token, meetingID string) ([]graph.Recording, error) {
	m.record("ListRecordings")
	if m.ListRecordingsFunc != nil {
		return m.ListRecordingsFunc(ctx, token, meetingID)
	}
	return nil, nil
}

func (m *MockClient) DownloadRecording(ctx context.Context, token, meetingID, recordingID string) ([]byte, error) {
	m.record("DownloadRecording")
	if m.DownloadRecordingFunc != nil {
		return m.DownloadRecordingFunc(ctx, token, meetingID, recordingID)
	}
	return nil, domain.NewNotFoundError("recording content unavailable")
}

func (m *MockClient) CreatePlannerTask(ctx context.Context, token string, request *graph.CreatePlannerTaskRequest) (*graph.PlannerTask, error) {
	m.record("CreatePlannerTask")
	if m.CreatePlannerTaskFunc != nil {
		return m.CreatePlannerTaskFunc(ctx, token, request)
	}
	return &graph.PlannerTask{ID: "mock-task", Title: request.Title, PlanID: request.PlanID}, nil
}

func (m *MockClient) SendMail(ctx context.Context, token, toEmail, subject, body string) error {
	m.record("SendMail")
	if m.SendMailFunc != nil {
		return m.SendMailFunc(ctx, token, toEmail, subject, body)
	}
	return nil
}
