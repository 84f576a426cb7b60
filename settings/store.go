package settings

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a settings key has no value.
var ErrNotFound = errors.New("setting not found")

// ErrRedisUnavailable wraps backend failures distinct from a missing key.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Store is a thin key-value settings store. Keys are namespaced under the
// configured prefix so several services can share one Redis.
type Store struct {
	redis  *redis.Client
	prefix string
}

// NewStore returns a settings store over the given client.
func NewStore(client *redis.Client, prefix string) (*Store, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if prefix == "" {
		prefix = "ak"
	}
	return &Store{redis: client, prefix: prefix}, nil
}

// GetByKey returns the value stored under key, or [ErrNotFound].
func (s *Store) GetByKey(ctx context.Context, key string) (string, error) {
	if s == nil || s.redis == nil {
		return "", ErrRedisUnavailable
	}
	value, err := s.redis.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Join(ErrRedisUnavailable, err)
	}
	return value, nil
}

// Set stores value under key with no expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if s == nil || s.redis == nil {
		return ErrRedisUnavailable
	}
	if err := s.redis.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return errors.Join(ErrRedisUnavailable, err)
	}
	return nil
}

func (s *Store) key(name string) string {
	return s.prefix + ":settings:" + name
}
