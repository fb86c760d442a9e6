// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

// MockTokenRepository implements domain.TokenRepository for testing
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Get(ctx context.Context, userID string) (*models.UserToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserToken), args.Error(1)
}

func (m *MockTokenRepository) Put(ctx context.Context, token *models.UserToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
