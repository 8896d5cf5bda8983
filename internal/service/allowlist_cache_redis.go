package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisAllowlistCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisAllowlistCacheStore(client redis.UniversalClient, prefix string) *RedisAllowlistCacheStore {
	if prefix == "" {
		prefix = "allowlist"
	}
	return &RedisAllowlistCacheStore{client: client, prefix: prefix}
}

func (s *RedisAllowlistCacheStore) Get(ctx context.Context, email string) (bool, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+":"+email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, false, nil
		}
		return false, false, err
	}
	return val == "1", true, nil
}

func (s *RedisAllowlistCacheStore) Set(ctx context.Context, email string, allowed bool, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	val := "0"
	if allowed {
		val = "1"
	}
	return s.client.Set(ctx, s.prefix+":"+email, val, ttl).Err()
}
