package ports

import (
	"context"

	"github.com/weatherdesk/report-api/internal/core/domain"
)

// TokenBlacklist stores revoked session tokens until their expiry.
type TokenBlacklist interface {
	// Add records a revocation. Adding an existing token is not an error.
	Add(ctx context.Context, entry domain.BlacklistedToken) error
	// Find returns domain.ErrNotBlacklisted when no record exists.
	Find(ctx context.Context, token string) (*domain.BlacklistedToken, error)
	Remove(ctx context.Context, token string) error
}
