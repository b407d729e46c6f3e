package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/weatherdesk/report-api/internal/core/domain"
)

// Blacklist keeps revoked tokens in the blacklisted_tokens table.
type Blacklist struct {
	s *Store
}

func NewBlacklist(s *Store) *Blacklist {
	return &Blacklist{s: s}
}

func (b *Blacklist) Add(ctx context.Context, entry domain.BlacklistedToken) error {
	_, err := b.s.exec(ctx,
		`INSERT INTO blacklisted_tokens (token, blacklisted_at, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT (token) DO NOTHING`,
		entry.Token, entry.BlacklistedAt.Unix(), entry.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert blacklisted token: %w", err)
	}
	return nil
}

func (b *Blacklist) Find(ctx context.Context, token string) (*domain.BlacklistedToken, error) {
	var blacklisted, expires int64
	err := b.s.queryRow(ctx,
		`SELECT blacklisted_at, expires_at FROM blacklisted_tokens WHERE token = ?`, token,
	).Scan(&blacklisted, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotBlacklisted
	}
	if err != nil {
		return nil, fmt.Errorf("find blacklisted token: %w", err)
	}
	return &domain.BlacklistedToken{
		Token:         token,
		BlacklistedAt: unixToTime(blacklisted),
		ExpiresAt:     unixToTime(expires),
	}, nil
}

func (b *Blacklist) Remove(ctx context.Context, token string) error {
	if _, err := b.s.exec(ctx, `DELETE FROM blacklisted_tokens WHERE token = ?`, token); err != nil {
		return fmt.Errorf("remove blacklisted token: %w", err)
	}
	return nil
}
