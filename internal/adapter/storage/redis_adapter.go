package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("lock not acquired")

const (
	lockKeyPrefix    = "merchant:"
	defaultLockTTL   = 10 * time.Second
	lockPollInterval = 20 * time.Millisecond
	unlockTimeout    = 2 * time.Second
)

// Only the holder of the token may delete the key.
var releaseLockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisAdapter is a Locker shared by every process talking to the same
// Redis, so order log writers on different hosts do not overwrite each other.
// The key expires after ttl and is not renewed: a holder still writing after
// ttl no longer excludes other writers. Size ttl (LOCK_TTL) well above the
// slowest expected rewrite of the order log.
type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client, ttl: defaultLockTTL}
}

// WithTTL bounds how long a crashed holder can keep the lock.
func (r *RedisAdapter) WithTTL(ttl time.Duration) *RedisAdapter {
	r.ttl = ttl
	return r
}

func (r *RedisAdapter) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrLockNotAcquired, key, ctx.Err())
		case <-ticker.C:
		}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
		defer cancel()

		if err := releaseLockScript.Run(ctx, r.client, []string{redisKey}, token).Err(); err != nil {
			slog.Warn("release lock failed", slog.String("key", key), slog.Any("err", err))
		}
	}, nil
}
