// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
)

// MockAudioTranscriber implements domain.AudioTranscriber for testing
type MockAudioTranscriber struct {
	mock.Mock
}

func (m *MockAudioTranscriber) TranscribeBytes(ctx context.Context, audio []byte, filename, languageHint string) (*domain.TranscriptionResult, error) {
	args := m.Called(ctx, audio, filename, languageHint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TranscriptionResult), args.Error(1)
}

func (m *MockAudioTranscriber) TranscribeFile(ctx context.Context, path, languageHint string) (*domain.TranscriptionResult, error) {
	args := m.Called(ctx, path, languageHint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TranscriptionResult), args.Error(1)
}
