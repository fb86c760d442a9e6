// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

// MockMeetingRepository implements domain.MeetingRepository for testing
type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) Create(ctx context.Context, record *models.MeetingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockMeetingRepository) Exists(ctx context.Context, meetingID string) (bool, error) {
	args := m.Called(ctx, meetingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeetingRepository) Get(ctx context.Context, meetingID string) (*models.MeetingRecord, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeetingRecord), args.Error(1)
}

func (m *MockMeetingRepository) GetWithRevision(ctx context.Context, meetingID string) (*models.MeetingRecord, uint64, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.MeetingRecord), args.Get(1).(uint64), args.Error(2)
}

func (m *MockMeetingRepository) Update(ctx context.Context, record *models.MeetingRecord, revision uint64) error {
	args := m.Called(ctx, record, revision)
	return args.Error(0)
}

func (m *MockMeetingRepository) ListAll(ctx context.Context) ([]*models.MeetingRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MeetingRecord), args.Error(1)
}

func (m *MockMeetingRepository) ListMissingTranscripts(ctx context.Context, cutoff time.Time) ([]*models.MeetingRecord, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MeetingRecord), args.Error(1)
}
