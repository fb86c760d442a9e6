// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// UserToken is the stored delegated credential for one registered user.
// Refresh rotation is handled by the auth service; repositories only persist
// whatever the provider last returned.
type UserToken struct {
	UserID       string     `json:"user_id"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	TokenType    string     `json:"token_type,omitempty"`
	Expiry       time.Time  `json:"expiry"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Expired reports whether the access token is past its expiry, with a small
// skew so tokens are refreshed before they lapse mid-request.
func (t *UserToken) Expired(now time.Time) bool {
	if t.Expiry.IsZero() {
		return false
	}
	return now.After(t.Expiry.Add(-1 * time.Minute))
}
