package kafka_middleware

import (
	"context"
	"time"

	"ticketing/pkg/kafka"
	"ticketing/pkg/metrics"
)

const (
	directionProduced = "produced"
	directionConsumed = "consumed"
)

// MetricsProducerMiddleware records publish counts and latency.
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		observe(directionProduced, msg.Topic, start, err)
		return err
	}
}

// MetricsConsumerMiddleware records handler counts and latency. Each retry
// attempt is observed separately.
func MetricsConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		observe(directionConsumed, msg.Topic, start, err)
		return err
	}
}

func observe(direction, topic string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.KafkaMessages.WithLabelValues(direction, topic, status).Inc()
	metrics.KafkaDuration.WithLabelValues(direction, topic).Observe(time.Since(start).Seconds())
}
