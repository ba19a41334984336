// Package lock provides short-lived, token-guarded mutual exclusion keyed by string.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotAcquired means another holder owns the key.
	ErrNotAcquired = errors.New("lock already held")

	// ErrLockLost means the entry expired or was taken over before release.
	ErrLockLost = errors.New("lock no longer held by this token")
)

// Lock is a held lock entry. Token identifies the attempt that created it.
type Lock struct {
	Key       string
	Token     string
	ExpiresAt time.Time
}

// Locker creates a lock entry only if absent and removes it only when the token still matches.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error)
	Release(ctx context.Context, l *Lock) error
}

// SeatKey is the lock key guarding one seat of one event.
func SeatKey(eventID int64, seatID string) string {
	return fmt.Sprintf("lock:%d:%s", eventID, seatID)
}

func newToken() string {
	return uuid.NewString()
}
