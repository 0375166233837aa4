package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckAndSetRateLimit reserves a rate-limit slot for the client and action.
// A nil client disables limiting entirely (local development without redis).
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, clientIP, action string, limit time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("rate_limit:ip:%s:%s", clientIP, action)

	wasSet, err := rdb.SetNX(ctx, key, "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

// GetRateLimitTTL reports how long until the client may retry the action.
func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, clientIP, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	key := fmt.Sprintf("rate_limit:ip:%s:%s", clientIP, action)
	return rdb.TTL(ctx, key).Result()
}
