// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

// MockMessagePublisher implements domain.MessagePublisher for testing
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishTranscriptCompleted(ctx context.Context, event models.TranscriptCompletedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockMessagePublisher) PublishMinutesGenerated(ctx context.Context, event models.MinutesGeneratedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
