package redis

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/diagnosis/salvatore-shoes/internal/repo"
	goredis "github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:"

// RateLimitRepo is a fixed-window counter: INCR, with the window's expiry
// set when the key is created.
type RateLimitRepo struct {
	client goredis.Cmdable
}

func NewRateLimitRepo(client goredis.Cmdable) *RateLimitRepo {
	return &RateLimitRepo{client: client}
}

func (r *RateLimitRepo) CheckRateLimit(ctx context.Context, key string, requests int, window time.Duration) (bool, error) {
	hashedKey := fmt.Sprintf("%s%x", rateLimitPrefix, sha256.Sum256([]byte(key)))

	var incr *goredis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, hashedKey)
		pipe.ExpireNX(ctx, hashedKey, window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check rate limit: %w", err)
	}

	return incr.Val() <= int64(requests), nil
}

// CleanupExpired is a no-op: keys carry their own expiry.
func (r *RateLimitRepo) CleanupExpired(context.Context) (int64, error) {
	return 0, nil
}

var _ repo.RateLimitRepo = (*RateLimitRepo)(nil)
