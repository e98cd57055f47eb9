package redis

import (
	"context"
	"errors"
	"time"

	"github.com/diagnosis/salvatore-shoes/pkg/middleware"
	goredis "github.com/redis/go-redis/v9"
)

type IdempotencyStore struct {
	client goredis.Cmdable
}

func NewIdempotencyStore(client goredis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	return v, err
}

func (s *IdempotencyStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
