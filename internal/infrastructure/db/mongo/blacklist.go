package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/weatherdesk/report-api/internal/core/domain"
)

const collectionBlacklist = "blacklisted_tokens"

// Blacklist stores revoked tokens. A TTL index on expires_at lets MongoDB
// purge records once the token could no longer authenticate anyway.
type Blacklist struct {
	col *mongo.Collection
}

func NewBlacklist(db *mongo.Database) *Blacklist {
	return &Blacklist{col: db.Collection(collectionBlacklist)}
}

type blacklistDoc struct {
	Token         string    `bson:"_id"`
	BlacklistedAt time.Time `bson:"blacklisted_at"`
	ExpiresAt     time.Time `bson:"expires_at"`
}

func blacklistIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	}
}

func (b *Blacklist) Add(ctx context.Context, entry domain.BlacklistedToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := b.col.UpdateOne(ctx,
		bson.M{"_id": entry.Token},
		bson.M{"$setOnInsert": bson.M{
			"blacklisted_at": entry.BlacklistedAt.UTC(),
			"expires_at":     entry.ExpiresAt.UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("insert blacklisted token: %w", err)
	}
	return nil
}

func (b *Blacklist) Find(ctx context.Context, token string) (*domain.BlacklistedToken, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc blacklistDoc
	if err := b.col.FindOne(ctx, bson.M{"_id": token}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotBlacklisted
		}
		return nil, fmt.Errorf("find blacklisted token: %w", err)
	}
	return &domain.BlacklistedToken{
		Token:         doc.Token,
		BlacklistedAt: doc.BlacklistedAt.UTC(),
		ExpiresAt:     doc.ExpiresAt.UTC(),
	}, nil
}

func (b *Blacklist) Remove(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := b.col.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return fmt.Errorf("remove blacklisted token: %w", err)
	}
	return nil
}
