package service

import (
	"context"
	"fmt"
	"time"

	"anoa.com/unibot/internal/model"
	"github.com/redis/go-redis/v9"
)

const actionCreateRequest = "create_request"

func rateLimitKey(userID model.ExternalID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID, action)
}

// CheckAndSetRateLimit reports whether userID may perform action now and, if so, blocks
// the action for limit. Without redis or with a zero limit every call is allowed.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, userID model.ExternalID, action string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, rateLimitKey(userID, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, userID model.ExternalID, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, rateLimitKey(userID, action)).Result()
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, userID model.ExternalID, action string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, rateLimitKey(userID, action)).Result()
	return err
}
