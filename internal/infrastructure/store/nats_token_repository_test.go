// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

func TestTokenRepositoryPutAndGet(t *testing.T) {
	repo := NewNatsTokenRepository(newMockNatsKeyValue())
	ctx := context.Background()

	token := &models.UserToken{
		UserID:       "user-1",
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, repo.Put(ctx, token))

	got, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.NotNil(t, got.UpdatedAt)
}

func TestTokenRepositoryPutOverwrites(t *testing.T) {
	repo := NewNatsTokenRepository(newMockNatsKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &models.UserToken{UserID: "user-1", AccessToken: "old"}))
	require.NoError(t, repo.Put(ctx, &models.UserToken{UserID: "user-1", AccessToken: "rotated"}))

	got, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.AccessToken)
}

func TestTokenRepositoryGetNotFound(t *testing.T) {
	repo := NewNatsTokenRepository(newMockNatsKeyValue())
	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func TestTokenRepositoryPutRequiresUserID(t *testing.T) {
	repo := NewNatsTokenRepository(newMockNatsKeyValue())
	err := repo.Put(context.Background(), &models.UserToken{})
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestTokenRepositoryListUserIDs(t *testing.T) {
	repo := NewNatsTokenRepository(newMockNatsKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &models.UserToken{UserID: "user-1"}))
	require.NoError(t, repo.Put(ctx, &models.UserToken{UserID: "user-2"}))

	ids, err := repo.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, ids)
}
