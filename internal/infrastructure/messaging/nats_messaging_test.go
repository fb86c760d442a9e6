// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

type mockNatsConn struct {
	connected  bool
	publishErr error
	subjects   []string
	payloads   [][]byte
}

func (m *mockNatsConn) IsConnected() bool { return m.connected }

func (m *mockNatsConn) Publish(subj string, data []byte) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.subjects = append(m.subjects, subj)
	m.payloads = append(m.payloads, data)
	return nil
}

func TestPublishTranscriptCompleted(t *testing.T) {
	conn := &mockNatsConn{connected: true}
	publisher := NewNatsPublisher(conn)

	event := models.TranscriptCompletedEvent{
		MeetingID:        "m1",
		Method:           models.TranscriptionMethodTeams,
		TranscriptLength: 1234,
		CompletedAt:      time.Date(2026, 8, 20, 15, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.PublishTranscriptCompleted(context.Background(), event))

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, TranscriptCompletedSubject, conn.subjects[0])

	var got models.TranscriptCompletedEvent
	require.NoError(t, json.Unmarshal(conn.payloads[0], &got))
	assert.Equal(t, event, got)
}

func TestPublishMinutesGenerated(t *testing.T) {
	conn := &mockNatsConn{connected: true}
	publisher := NewNatsPublisher(conn)

	event := models.MinutesGeneratedEvent{
		MeetingID:       "m1",
		ActionItemCount: 3,
		GeneratedAt:     time.Date(2026, 8, 20, 16, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.PublishMinutesGenerated(context.Background(), event))

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, MinutesGeneratedSubject, conn.subjects[0])
}

func TestPublishDisconnected(t *testing.T) {
	publisher := NewNatsPublisher(&mockNatsConn{connected: false})
	err := publisher.PublishTranscriptCompleted(context.Background(), models.TranscriptCompletedEvent{})
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestPublishNilConn(t *testing.T) {
	publisher := NewNatsPublisher(nil)
	err := publisher.PublishMinutesGenerated(context.Background(), models.MinutesGeneratedEvent{})
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestPublishError(t *testing.T) {
	conn := &mockNatsConn{connected: true, publishErr: errors.New("nats: connection closed")}
	publisher := NewNatsPublisher(conn)
	err := publisher.PublishTranscriptCompleted(context.Background(), models.TranscriptCompletedEvent{MeetingID: "m1"})
	require.Error(t, err)
}
