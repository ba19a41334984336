package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	kafka_config "ticketing/pkg/kafka/config"
	"ticketing/pkg/logger"
	"ticketing/pkg/metrics"

	"github.com/cenkalti/backoff/v5"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderDLQError     = "dlq-error"
	HeaderDLQErrorType = "dlq-error-type"
	HeaderDLQTimestamp = "dlq-timestamp"
	HeaderDLQPartition = "dlq-original-partition"
	HeaderDLQOffset    = "dlq-original-offset"

	commitTimeout = 10 * time.Second
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerMiddleware allows intercepting message handling
type ConsumerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

// ConsumerOptions selects what a consumer reads and where failures go.
type ConsumerOptions struct {
	Topic    string
	GroupID  string
	DLQTopic string // Empty disables dead-lettering

	// ProcessingTimeout bounds each handler attempt. The attempt's context is
	// detached from shutdown so an in-flight message runs to completion.
	ProcessingTimeout time.Duration
}

// Consumer reads a topic as part of a consumer group and commits each offset
// after the handler finished with the message.
type Consumer struct {
	reader       messageReader
	dlqWriter    messageWriter
	opts         ConsumerOptions
	handler      MessageHandler
	middleware   []ConsumerMiddleware
	maxRetries   int
	retryBackoff time.Duration
	log          *logger.Logger
	closed       bool
	mu           sync.RWMutex
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(cfg *kafka_config.Config, opts ConsumerOptions, handler MessageHandler, log *logger.Logger) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if opts.Topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if opts.GroupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		Topic:             opts.Topic,
		GroupID:           opts.GroupID,
		Dialer:            &kafka.Dialer{ClientID: cfg.ClientID, Timeout: 10 * time.Second, DualStack: true},
		MinBytes:          cfg.ConsumerMinBytes,
		MaxBytes:          cfg.ConsumerMaxBytes,
		MaxWait:           cfg.ConsumerMaxWait,
		StartOffset:       cfg.ConsumerStartOffset,
		CommitInterval:    cfg.ConsumerCommitInterval,
		HeartbeatInterval: cfg.ConsumerHeartbeatInterval,
		SessionTimeout:    cfg.ConsumerSessionTimeout,
		RebalanceTimeout:  cfg.ConsumerRebalanceTimeout,
		Logger:            kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error("kafka reader error", "topic", opts.Topic, "detail", fmt.Sprintf(msg, args...))
		}),
	})

	var dlqWriter messageWriter
	if opts.DLQTopic != "" {
		dlqWriter = newWriter(cfg, opts.DLQTopic, log)
	}

	c := newConsumer(reader, dlqWriter, opts, handler, log)
	c.maxRetries = cfg.ConsumerMaxRetries
	c.retryBackoff = cfg.ConsumerRetryBackoff
	return c, nil
}

func newConsumer(reader messageReader, dlqWriter messageWriter, opts ConsumerOptions, handler MessageHandler, log *logger.Logger) *Consumer {
	if opts.ProcessingTimeout <= 0 {
		opts.ProcessingTimeout = 30 * time.Second
	}
	return &Consumer{
		reader:       reader,
		dlqWriter:    dlqWriter,
		opts:         opts,
		handler:      handler,
		middleware:   make([]ConsumerMiddleware, 0),
		maxRetries:   kafka_config.DefaultConsumerMaxRetries,
		retryBackoff: kafka_config.DefaultConsumerRetryBackoff,
		log:          log.With("topic", opts.Topic, "group_id", opts.GroupID),
	}
}

// Use adds middleware to the consumer
func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// Start consumes until ctx is cancelled. The message being handled when ctx
// is cancelled is finished and committed before Start returns nil.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.mu.RUnlock()

	c.log.Info("Kafka consumer started")

	for {
		kafkaMsg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Kafka consumer stopping")
				return nil
			}
			if errors.Is(err, io.EOF) {
				return ErrConsumerClosed
			}
			c.log.Error("Failed to fetch message", "error", err)
			if !sleep(ctx, c.retryBackoff) {
				return nil
			}
			continue
		}

		if !c.processMessage(ctx, kafkaMsg) {
			c.log.Info("Kafka consumer stopping before commit; message will be redelivered",
				"partition", kafkaMsg.Partition,
				"offset", kafkaMsg.Offset,
			)
			return nil
		}

		commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
		err = c.reader.CommitMessages(commitCtx, kafkaMsg)
		cancel()
		if err != nil {
			c.log.Error("Failed to commit message",
				"partition", kafkaMsg.Partition,
				"offset", kafkaMsg.Offset,
				"error", err,
			)
		}
	}
}

// processMessage reports whether the offset may be committed. It returns
// false only when shutdown interrupted a retry wait.
func (c *Consumer) processMessage(ctx context.Context, kafkaMsg kafka.Message) bool {
	msg := fromKafkaMessage(kafkaMsg)

	err := c.handleWithRetry(ctx, msg)
	if err == nil {
		return true
	}
	if ctx.Err() != nil && errors.Is(err, context.Cause(ctx)) {
		return false
	}

	fields := []any{
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", msg.Key,
		"event_id", msg.GetEventID(),
		"correlation_id", msg.GetCorrelationID(),
		"error_type", ClassifyError(err).String(),
		"error", err,
	}

	if !ShouldDeadLetter(err) {
		c.log.Info("Message rejected", fields...)
		return true
	}

	if c.dlqWriter == nil {
		c.log.Error("Message failed and no DLQ is configured; dropping", fields...)
		return true
	}

	dlqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.ProcessingTimeout)
	defer cancel()
	if dlqErr := c.sendToDLQ(dlqCtx, msg, err); dlqErr != nil {
		c.log.Error("Failed to send message to DLQ", append(fields, "dlq_error", dlqErr)...)
		return true
	}
	c.log.Warn("Message sent to DLQ", append(fields, "dlq_topic", c.opts.DLQTopic)...)
	return true
}

func (c *Consumer) handleWithRetry(ctx context.Context, msg Message) error {
	c.mu.RLock()
	middleware := c.middleware
	c.mu.RUnlock()

	handler := c.handler
	for i := len(middleware) - 1; i >= 0; i-- {
		mw := middleware[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryBackoff
	b.MaxInterval = max(c.retryBackoff*8, c.retryBackoff)

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.ProcessingTimeout)
		defer cancel()

		err := handler(attemptCtx, msg)
		if err == nil {
			return struct{}{}, nil
		}
		if !ShouldRetry(err, attempt, c.maxRetries) {
			return struct{}{}, backoff.Permanent(err)
		}
		attempt++
		msg.IncrementRetryCount()
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.Warn("Retrying message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"retry_in", next,
				"error", err,
			)
		}),
	)
	return err
}

// sendToDLQ forwards the original payload with failure metadata in headers.
func (c *Consumer) sendToDLQ(ctx context.Context, msg Message, cause error) error {
	headers := make(map[string]string, len(msg.Headers)+6)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalTopic] = msg.Topic
	headers[HeaderDLQError] = cause.Error()
	headers[HeaderDLQErrorType] = ClassifyError(cause).String()
	headers[HeaderDLQTimestamp] = time.Now().UTC().Format(time.RFC3339)
	headers[HeaderDLQPartition] = fmt.Sprint(msg.Partition)
	headers[HeaderDLQOffset] = fmt.Sprint(msg.Offset)

	err := c.dlqWriter.WriteMessages(ctx, toKafkaMessage(Message{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Timestamp: time.Now(),
	}))

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.KafkaMessages.WithLabelValues("dead_lettered", c.opts.DLQTopic, status).Inc()
	return err
}

// Close closes the consumer and releases resources
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	err := c.reader.Close()
	if c.dlqWriter != nil {
		err = errors.Join(err, c.dlqWriter.Close())
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
