// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
)

// AuthService implements domain.TokenProvider over stored delegated
// credentials, refreshing through the provider's OAuth endpoint when a token
// is expired. An unrefreshable credential surfaces as an unauthenticated
// error, which is fatal for the holder's batch but never for the cycle.
type AuthService struct {
	TokenRepository domain.TokenRepository
	OAuthConfig     *oauth2.Config
	// now is injectable for tests.
	now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(tokenRepository domain.TokenRepository, oauthConfig *oauth2.Config) *AuthService {
	return &AuthService{
		TokenRepository: tokenRepository,
		OAuthConfig:     oauthConfig,
		now:             time.Now,
	}
}

var _ domain.TokenProvider = (*AuthService)(nil)

// ServiceReady checks if the service is ready for use.
func (s *AuthService) ServiceReady() bool {
	return s.TokenRepository != nil && s.OAuthConfig != nil
}

// GetValidAccessToken returns a live access token for the user, refreshing
// and persisting the rotation when the stored token is expired.
func (s *AuthService) GetValidAccessToken(ctx context.Context, userID string) (string, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return "", domain.ErrServiceUnavailable
	}

	stored, err := s.TokenRepository.Get(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", domain.NewUnauthenticatedError("no stored credential for user", err)
		}
		return "", err
	}

	if !stored.Expired(s.now()) {
		return stored.AccessToken, nil
	}

	if stored.RefreshToken == "" {
		return "", domain.NewUnauthenticatedError("stored credential expired and has no refresh token")
	}

	refreshed, err := s.OAuthConfig.TokenSource(ctx, &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       stored.Expiry,
	}).Token()
	if err != nil {
		slog.WarnContext(ctx, "credential refresh failed", "user_id", userID, logging.ErrKey, err)
		return "", domain.NewUnauthenticatedError("credential refresh failed", err)
	}

	rotated := &models.UserToken{
		UserID:       userID,
		AccessToken:  refreshed.AccessToken,
		RefreshToken: refreshed.RefreshToken,
		TokenType:    refreshed.TokenType,
		Expiry:       refreshed.Expiry,
	}
	if rotated.RefreshToken == "" {
		// Providers may omit the refresh token on rotation; keep the old one.
		rotated.RefreshToken = stored.RefreshToken
	}
	if err := s.TokenRepository.Put(ctx, rotated); err != nil {
		// The refreshed token is still valid for this cycle even if the
		// rotation failed to persist.
		slog.WarnContext(ctx, "failed to persist rotated credential", "user_id", userID, logging.ErrKey, err)
	}

	slog.InfoContext(ctx, "refreshed delegated credential", "user_id", userID)
	return refreshed.AccessToken, nil
}

// ListCredentialHolders returns the user ids with stored credentials.
func (s *AuthService) ListCredentialHolders(ctx context.Context) ([]string, error) {
	if !s.ServiceReady() {
		return nil, domain.ErrServiceUnavailable
	}
	return s.TokenRepository.ListUserIDs(ctx)
}
