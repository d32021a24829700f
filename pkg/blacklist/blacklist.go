package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist reads the token revocations written by the auth service
// into Redis. Entries are owned and expired by the writer.
type TokenBlacklist struct {
	redis *redis.Client
}

// NewTokenBlacklist creates a new token blacklist reader
func NewTokenBlacklist(redisClient *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{
		redis: redisClient,
	}
}

// IsBlacklisted checks if a token is in the blacklist
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("blacklist:token:%s", token)

	exists, err := b.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}

	return exists > 0, nil
}

// IsUserBlacklisted checks if a token was issued before the user's invalidation time
func (b *TokenBlacklist) IsUserBlacklisted(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	key := fmt.Sprintf("blacklist:user:%s", userID)

	timestamp, err := b.redis.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user blacklist: %w", err)
	}

	invalidationTime := time.Unix(timestamp, 0)
	return tokenIssuedAt.Before(invalidationTime), nil
}

// IsRevoked combines the token and the user level checks. A zero issuedAt
// skips the user level check.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token, userID string, issuedAt time.Time) (bool, error) {
	revoked, err := b.IsBlacklisted(ctx, token)
	if err != nil || revoked {
		return revoked, err
	}
	if issuedAt.IsZero() {
		return false, nil
	}
	return b.IsUserBlacklisted(ctx, userID, issuedAt)
}

// Ping checks the Redis connection
func (b *TokenBlacklist) Ping(ctx context.Context) error {
	return b.redis.Ping(ctx).Err()
}
