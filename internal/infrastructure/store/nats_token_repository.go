// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
)

// NatsTokenRepository is the NATS KV implementation of
// domain.TokenRepository. Tokens are keyed by user id.
type NatsTokenRepository struct {
	*NatsBaseRepository[models.UserToken]
}

// NewNatsTokenRepository creates a new NATS KV token repository.
func NewNatsTokenRepository(kvStore INatsKeyValue) *NatsTokenRepository {
	return &NatsTokenRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.UserToken](kvStore, "user token"),
	}
}

var _ domain.TokenRepository = (*NatsTokenRepository)(nil)

// Get retrieves the stored credential for a user.
func (r *NatsTokenRepository) Get(ctx context.Context, userID string) (*models.UserToken, error) {
	token, err := r.NatsBaseRepository.Get(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	return token, nil
}

// Put stores or replaces the credential for a user. Refresh rotation always
// overwrites, so plain Put is sufficient.
func (r *NatsTokenRepository) Put(ctx context.Context, token *models.UserToken) error {
	if token.UserID == "" {
		return domain.NewValidationError("user token requires a user id")
	}

	now := time.Now().UTC()
	token.UpdatedAt = &now
	return r.NatsBaseRepository.Put(ctx, token.UserID, token)
}

// ListUserIDs returns the ids of every user with a stored credential.
func (r *NatsTokenRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	return r.ListKeys(ctx)
}
