// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

// MockMinutesRepository implements domain.MinutesRepository for testing
type MockMinutesRepository struct {
	mock.Mock
}

func (m *MockMinutesRepository) Get(ctx context.Context, meetingID string) (*models.MeetingMinutes, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeetingMinutes), args.Error(1)
}

func (m *MockMinutesRepository) Put(ctx context.Context, minutes *models.MeetingMinutes) error {
	args := m.Called(ctx, minutes)
	return args.Error(0)
}

func (m *MockMinutesRepository) Exists(ctx context.Context, meetingID string) (bool, error) {
	args := m.Called(ctx, meetingID)
	return args.Bool(0), args.Error(1)
}
