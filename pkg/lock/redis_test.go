package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client), mr
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	locker, mr := newTestRedisLocker(t)
	ctx := context.Background()
	key := SeatKey(1, "A1")

	l, err := locker.Acquire(ctx, key, 10*time.Second)
	require.NoError(t, err)
	require.Equal(t, "lock:1:A1", l.Key)
	require.NotEmpty(t, l.Token)
	require.True(t, mr.Exists(key))
	require.Equal(t, 10*time.Second, mr.TTL(key))

	require.NoError(t, locker.Release(ctx, l))
	require.False(t, mr.Exists(key))
}

func TestRedisLocker_SecondAcquireIsRejected(t *testing.T) {
	locker, _ := newTestRedisLocker(t)
	ctx := context.Background()
	key := SeatKey(1, "A1")

	_, err := locker.Acquire(ctx, key, 10*time.Second)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, key, 10*time.Second)
	require.ErrorIs(t, err, ErrNotAcquired)
}

func TestRedisLocker_ExpiredLockCanBeReacquired(t *testing.T) {
	locker, mr := newTestRedisLocker(t)
	ctx := context.Background()
	key := SeatKey(2, "B1")

	first, err := locker.Acquire(ctx, key, time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	second, err := locker.Acquire(ctx, key, time.Second)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	// The stale holder must not delete the new holder's entry.
	err = locker.Release(ctx, first)
	require.True(t, errors.Is(err, ErrLockLost))
	require.True(t, mr.Exists(key))

	require.NoError(t, locker.Release(ctx, second))
	require.False(t, mr.Exists(key))
}

func TestRedisLocker_UnavailableBackend(t *testing.T) {
	locker, mr := newTestRedisLocker(t)
	mr.Close()

	_, err := locker.Acquire(context.Background(), SeatKey(1, "A1"), time.Second)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotAcquired))
}

func TestSeatKey(t *testing.T) {
	require.Equal(t, "lock:5:C3", SeatKey(5, "C3"))
}
