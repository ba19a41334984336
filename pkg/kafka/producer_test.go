package kafka

import (
	"context"
	"errors"
	"testing"

	kafka_config "ticketing/pkg/kafka/config"
	"ticketing/pkg/logger"

	"github.com/stretchr/testify/require"
)

func buildTestMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey("1:A1").
		WithValue(claimPayload{UserID: 1, EventID: 1, SeatID: "A1"}).
		WithCorrelationID("req-1").
		Build()
	require.NoError(t, err)
	return msg
}

func TestNewProducer_Validation(t *testing.T) {
	cfg := &kafka_config.Config{Brokers: []string{"localhost:9092"}, ProducerMaxAttempts: 3}

	_, err := NewProducer(nil, "topic", logger.Discard())
	require.Error(t, err)

	_, err = NewProducer(&kafka_config.Config{}, "topic", logger.Discard())
	require.Error(t, err)

	_, err = NewProducer(cfg, "", logger.Discard())
	require.Error(t, err)

	p, err := NewProducer(cfg, "booking-requests", logger.Discard())
	require.NoError(t, err)
	require.Equal(t, "booking-requests", p.Topic())
	require.NoError(t, p.Close())
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "booking-requests", logger.Discard())

	require.NoError(t, p.Publish(context.Background(), buildTestMessage(t)))
	require.Len(t, w.messages, 1)

	written := w.messages[0]
	require.Empty(t, written.Topic)
	require.Equal(t, "1:A1", string(written.Key))
	decoded := fromKafkaMessage(written)
	require.Equal(t, "req-1", decoded.GetCorrelationID())
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := newProducer(&fakeWriter{}, "booking-requests", logger.Discard())
	ctx := context.Background()

	require.ErrorIs(t, p.Publish(ctx, Message{Value: []byte("x")}), ErrEmptyKey)
	require.ErrorIs(t, p.Publish(ctx, Message{Key: "k"}), ErrEmptyValue)
}

func TestProducer_WriteFailure(t *testing.T) {
	cause := errors.New("leader not available")
	p := newProducer(&fakeWriter{err: cause}, "booking-requests", logger.Discard())

	err := p.Publish(context.Background(), buildTestMessage(t))
	require.ErrorIs(t, err, cause)
}

func TestProducer_MiddlewareSeesTopic(t *testing.T) {
	p := newProducer(&fakeWriter{}, "booking-requests", logger.Discard())
	var seen string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seen = msg.Topic
		return next(ctx, msg)
	})

	require.NoError(t, p.Publish(context.Background(), buildTestMessage(t)))
	require.Equal(t, "booking-requests", seen)
}

func TestProducer_PublishAfterClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "booking-requests", logger.Discard())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	require.True(t, w.closed)
	require.ErrorIs(t, p.Publish(context.Background(), buildTestMessage(t)), ErrProducerClosed)
}
