package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"ticketing/pkg/logger"
)

var errNotReady = errors.New("not ready")

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), logger.Discard(), "postgres", Policy{MaxAttempts: 5, InitialInterval: time.Millisecond}, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errNotReady
		}
		return "connected", nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got != "connected" {
		t.Errorf("got %q, want connected", got)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), logger.Discard(), "kafka", Policy{MaxAttempts: 3, InitialInterval: time.Millisecond}, func(ctx context.Context) (struct{}, error) {
		calls++
		return struct{}{}, errNotReady
	})
	if !errors.Is(err, errNotReady) {
		t.Fatalf("expected errNotReady, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, logger.Discard(), "redis", Policy{MaxAttempts: 100, InitialInterval: 50 * time.Millisecond}, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errNotReady
	})
	if err == nil {
		t.Fatal("expected an error after cancellation")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
