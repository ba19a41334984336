package main

import (
	"context"
	"fmt"

	"ticketing/internal/intake/handler"
	"ticketing/internal/intake/service"
	"ticketing/internal/intake/validator"
	"ticketing/pkg/app"
	"ticketing/pkg/config"
	"ticketing/pkg/health"
	"ticketing/pkg/kafka"
	kafka_config "ticketing/pkg/kafka/config"
	kafkamiddleware "ticketing/pkg/kafka/middleware"
)

const ServiceName = "write-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Write API")

	if err := run(cfg); err != nil {
		cfg.Log.Fatal("Write API stopped with error", "error", err)
	}
	cfg.Log.Info("Write API stopped")
}

func run(cfg *config.Config) error {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		return fmt.Errorf("invalid kafka configuration: %w", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaTopicBooking, cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create kafka producer: %w", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}()
	producer.Use(kafkamiddleware.MetricsProducerMiddleware())
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))

	claimService := service.NewClaimService(producer, validator.NewClaimValidator(), cfg.Log)
	cfg.Log.Info("Claim service initialized", "topic", producer.Topic())

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewClaimHandler(claimService, cfg.Log),
		health.Check{Name: "kafka", Ping: func(ctx context.Context) error {
			return kafka.Ping(ctx, kafkaCfg.Brokers)
		}},
	)
	return serverApp.Run()
}
