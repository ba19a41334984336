package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{name: "nil", err: nil, want: ErrorTypeUnknown},
		{name: "transient kafka error", err: NewTransientError("db down", errors.New("x")), want: ErrorTypeTransient},
		{name: "wrapped permanent kafka error", err: fmt.Errorf("handler: %w", NewPermanentError("bad payload", nil)), want: ErrorTypePermanent},
		{name: "business error", err: NewBusinessError("seat taken", nil), want: ErrorTypeBusiness},
		{name: "deadline exceeded", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: ErrorTypeTransient},
		{name: "connection refused text", err: errors.New("dial tcp 127.0.0.1:5432: connect: Connection Refused"), want: ErrorTypeTransient},
		{name: "unknown error", err: errors.New("something odd"), want: ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("db down", nil)

	require.True(t, ShouldRetry(transient, 0, 3))
	require.True(t, ShouldRetry(transient, 2, 3))
	require.False(t, ShouldRetry(transient, 3, 3))
	require.False(t, ShouldRetry(NewPermanentError("bad", nil), 0, 3))
	require.False(t, ShouldRetry(nil, 0, 3))
}

func TestShouldDeadLetter(t *testing.T) {
	require.True(t, ShouldDeadLetter(NewTransientError("db down", nil)))
	require.True(t, ShouldDeadLetter(errors.New("odd")))
	require.False(t, ShouldDeadLetter(NewBusinessError("seat taken", nil)))
	require.False(t, ShouldDeadLetter(nil))
}

func TestKafkaError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewTransientError("reserve seat", cause).WithDetail("seat_id", "A1")

	require.Equal(t, "reserve seat: boom", err.Error())
	require.ErrorIs(t, err, cause)
	require.Equal(t, "A1", err.Details["seat_id"])
	require.Equal(t, "transient", err.Type.String())
}
