package domain

import "time"

// TokenPair is what a successful signup or login returns: the short-lived
// access token (JWT) and the opaque refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken models the stored refresh token record. The opaque value
// itself is never persisted; TokenHash is its SHA-256 fingerprint. A token
// is valid iff its row exists and ExpiresAt is in the future - revocation is
// physical deletion, there are no tombstones.
type RefreshToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token's fixed lifetime has passed. Use is
// deliberately not extended - no sliding expiration.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
