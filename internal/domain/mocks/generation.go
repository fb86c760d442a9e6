// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

// MockChatCompleter implements domain.ChatCompleter for testing
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

// MockMinutesGenerator implements domain.MinutesGenerator for testing
type MockMinutesGenerator struct {
	mock.Mock
}

func (m *MockMinutesGenerator) GenerateMinutes(ctx context.Context, record *models.MeetingRecord) (*models.MeetingMinutes, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeetingMinutes), args.Error(1)
}

func (m *MockMinutesGenerator) SummarizeTranscript(ctx context.Context, transcript string) (string, error) {
	args := m.Called(ctx, transcript)
	return args.String(0), args.Error(1)
}
