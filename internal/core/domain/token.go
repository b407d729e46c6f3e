package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrTokenBlacklisted = errors.New("token has been blacklisted")
	// ErrNotBlacklisted is returned by blacklist lookups when the token has no
	// revocation record.
	ErrNotBlacklisted = errors.New("token not blacklisted")
)

// Claims is the decoded payload of a session token.
type Claims struct {
	Subject   string
	Role      string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// BlacklistedToken is a revocation record created on logout. It stays
// authoritative until ExpiresAt, which mirrors the token's own expiry.
type BlacklistedToken struct {
	Token         string
	BlacklistedAt time.Time
	ExpiresAt     time.Time
}

func (b BlacklistedToken) Expired(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}
