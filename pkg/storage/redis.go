package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps session material in Redis, for hosts that share one
// logical session across processes (a gateway sidecar, a worker fleet
// acting on behalf of a service account).
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures the RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces all keys, so several applications can share
// one Redis database.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithTTL expires stored values after d. Zero means no expiry; the
// session manager removes keys explicitly on logout either way.
func WithTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = d }
}

// NewRedisStore creates a store backed by the given Redis client.
func NewRedisStore(client *redis.Client, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("storage: redis client is required")
	}

	s := &RedisStore{
		client: client,
		prefix: "authkit:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("storage: redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("storage: redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("storage: redis del %s: %w", key, err)
	}
	return nil
}
