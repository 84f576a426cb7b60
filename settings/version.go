package settings

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// GlobalVersion is the process-shared global logout version counter. It lives
// in Redis, not process memory, so every replica observes the same value.
type GlobalVersion struct {
	redis          *redis.Client
	key            string
	defaultVersion string
}

// NewGlobalVersion builds the counter over the given client. The default
// version must be a numeric string; it is the value an uninitialized counter
// reads as.
func NewGlobalVersion(client *redis.Client, prefix, name, defaultVersion string) (*GlobalVersion, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if name == "" {
		return nil, errors.New("version key name is required")
	}
	if _, err := strconv.ParseInt(defaultVersion, 10, 64); err != nil {
		return nil, errors.New("default version must be a numeric string")
	}
	if prefix == "" {
		prefix = "ak"
	}
	return &GlobalVersion{
		redis:          client,
		key:            prefix + ":settings:" + name,
		defaultVersion: defaultVersion,
	}, nil
}

// Initialize seeds the counter with the default version if absent. It is
// idempotent: an existing value is never reset. Callers treat a failure as
// non-fatal; the counter reads as the default until Redis recovers.
func (v *GlobalVersion) Initialize(ctx context.Context) error {
	if v == nil || v.redis == nil {
		return ErrRedisUnavailable
	}
	if err := v.redis.SetNX(ctx, v.key, v.defaultVersion, 0).Err(); err != nil {
		return errors.Join(ErrRedisUnavailable, err)
	}
	return nil
}

// Current returns the current version. A missing key reads as the default
// version so an un-initialized deployment still issues verifiable tokens.
func (v *GlobalVersion) Current(ctx context.Context) (string, error) {
	if v == nil || v.redis == nil {
		return "", ErrRedisUnavailable
	}
	value, err := v.redis.Get(ctx, v.key).Result()
	if errors.Is(err, redis.Nil) {
		return v.defaultVersion, nil
	}
	if err != nil {
		return "", errors.Join(ErrRedisUnavailable, err)
	}
	return value, nil
}

// Increment atomically bumps the counter and returns the new version. The
// key is seeded first so a bump of an uninitialized counter still moves past
// the default value that outstanding tokens may carry.
func (v *GlobalVersion) Increment(ctx context.Context) (string, error) {
	if v == nil || v.redis == nil {
		return "", ErrRedisUnavailable
	}
	if err := v.redis.SetNX(ctx, v.key, v.defaultVersion, 0).Err(); err != nil {
		return "", errors.Join(ErrRedisUnavailable, err)
	}
	next, err := v.redis.Incr(ctx, v.key).Result()
	if err != nil {
		return "", errors.Join(ErrRedisUnavailable, err)
	}
	return strconv.FormatInt(next, 10), nil
}
