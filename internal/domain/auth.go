// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "context"

// TokenProvider hands out valid delegated access tokens for registered users,
// refreshing stored credentials transparently. An unrefreshable credential
// surfaces as an unauthenticated error, which is the only error class that
// aborts a credential holder's batch.
type TokenProvider interface {
	GetValidAccessToken(ctx context.Context, userID string) (string, error)
	// ListCredentialHolders returns the user ids with stored credentials.
	ListCredentialHolders(ctx context.Context) ([]string, error)
}
