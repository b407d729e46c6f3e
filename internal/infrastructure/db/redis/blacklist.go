package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weatherdesk/report-api/internal/core/domain"
)

// Blacklist keeps revoked tokens as expiring keys.
// Key format: blacklist:<sha256(token)>, value: <blacklisted_unix>:<expires_unix>
type Blacklist struct {
	client *redis.Client
	now    func() time.Time
}

func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client, now: time.Now}
}

// Add stores the entry until its expiry. Tokens that have already expired
// are not stored since they can no longer authenticate.
func (b *Blacklist) Add(ctx context.Context, entry domain.BlacklistedToken) error {
	ttl := entry.ExpiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	if err := b.client.SetNX(ctx, key(entry.Token), encodeEntry(entry), ttl).Err(); err != nil {
		return fmt.Errorf("blacklist add: %w", err)
	}
	return nil
}

func (b *Blacklist) Find(ctx context.Context, token string) (*domain.BlacklistedToken, error) {
	val, err := b.client.Get(ctx, key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotBlacklisted
	}
	if err != nil {
		return nil, fmt.Errorf("blacklist lookup: %w", err)
	}
	return decodeEntry(token, val)
}

func (b *Blacklist) Remove(ctx context.Context, token string) error {
	if err := b.client.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("blacklist remove: %w", err)
	}
	return nil
}

func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "blacklist:" + hex.EncodeToString(sum[:])
}

func encodeEntry(e domain.BlacklistedToken) string {
	return strconv.FormatInt(e.BlacklistedAt.Unix(), 10) + ":" + strconv.FormatInt(e.ExpiresAt.Unix(), 10)
}

func decodeEntry(token, val string) (*domain.BlacklistedToken, error) {
	at, exp, ok := strings.Cut(val, ":")
	if !ok {
		return nil, fmt.Errorf("blacklist entry %q is malformed", val)
	}
	blacklisted, err := strconv.ParseInt(at, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("blacklist entry: %w", err)
	}
	expires, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("blacklist entry: %w", err)
	}
	return &domain.BlacklistedToken{
		Token:         token,
		BlacklistedAt: time.Unix(blacklisted, 0).UTC(),
		ExpiresAt:     time.Unix(expires, 0).UTC(),
	}, nil
}
