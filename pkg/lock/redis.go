package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, now: time.Now}
}

// Acquire issues SET key token NX with the given expiry.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	token := newToken()
	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return &Lock{Key: key, Token: token, ExpiresAt: r.now().Add(ttl)}, nil
}

// Release deletes the key only when it still holds this lock's token.
func (r *RedisLocker) Release(ctx context.Context, l *Lock) error {
	deleted, err := releaseScript.Run(ctx, r.client, []string{l.Key}, l.Token).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.Key, err)
	}
	if deleted == 0 {
		return ErrLockLost
	}
	return nil
}

func (r *RedisLocker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
