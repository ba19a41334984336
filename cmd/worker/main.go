package main

import (
	"context"
	"fmt"
	"time"

	"ticketing/internal/coordinator/service"
	"ticketing/internal/tickets/repository"
	"ticketing/pkg/app"
	"ticketing/pkg/client"
	"ticketing/pkg/config"
	"ticketing/pkg/health"
	"ticketing/pkg/kafka"
	kafka_config "ticketing/pkg/kafka/config"
	kafkamiddleware "ticketing/pkg/kafka/middleware"
	"ticketing/pkg/lock"
)

const ServiceName = "worker"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Booking Worker")

	if err := run(cfg); err != nil {
		cfg.Log.Fatal("Booking Worker stopped with error", "error", err)
	}
	cfg.Log.Info("Booking Worker stopped")
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		return fmt.Errorf("invalid kafka configuration: %w", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	clients := client.New(cfg.Log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = clients.Close(ctx)
	}()

	driver, dsn := cfg.SQLDataSource()
	if err := clients.ConnectSQL(ctx, driver, dsn, cfg.StartupPolicy()); err != nil {
		return err
	}
	tickets, err := repository.NewTicketRepository(clients.SQL, driver)
	if err != nil {
		return err
	}
	if err := tickets.EnsureSchema(ctx); err != nil {
		return err
	}
	if cfg.SeedSampleData {
		if err := tickets.SeedSampleData(ctx); err != nil {
			return err
		}
		cfg.Log.Info("Sample seats seeded")
	}

	locker, lockCheck, err := connectLocker(ctx, cfg, clients)
	if err != nil {
		return err
	}

	coordinator := service.NewCoordinator(tickets, locker, cfg.LockTTL, cfg.Log)
	consumer, err := kafka.NewConsumer(kafkaCfg, kafka.ConsumerOptions{
		Topic:             cfg.KafkaTopicBooking,
		GroupID:           cfg.KafkaGroupID,
		DLQTopic:          cfg.KafkaTopicBookingDLQ,
		ProcessingTimeout: cfg.ProcessingTimeout,
	}, coordinator.HandleMessage, cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
	}()
	consumer.Use(kafkamiddleware.MetricsConsumerMiddleware())
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))

	cfg.Log.Info("Booking coordinator initialized",
		"topic", cfg.KafkaTopicBooking,
		"group_id", cfg.KafkaGroupID,
		"lock_backend", cfg.LockBackend,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(nil,
		health.Check{Name: "sql", Ping: tickets.Ping},
		lockCheck,
		health.Check{Name: "kafka", Ping: func(ctx context.Context) error {
			return kafka.Ping(ctx, kafkaCfg.Brokers)
		}},
	)
	serverApp.AddBackground("booking-consumer", consumer.Start)
	return serverApp.Run()
}

func connectLocker(ctx context.Context, cfg *config.Config, clients *client.Client) (lock.Locker, health.Check, error) {
	if cfg.LockBackend == config.LockBackendMongo {
		if err := clients.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoConnTimeout, cfg.StartupPolicy()); err != nil {
			return nil, health.Check{}, err
		}
		locker := lock.NewMongoLocker(clients.Mongo.Database(cfg.MongoDatabaseName))
		if err := locker.EnsureIndexes(ctx); err != nil {
			return nil, health.Check{}, err
		}
		return locker, health.Check{Name: "mongodb", Ping: func(ctx context.Context) error {
			return clients.Mongo.Ping(ctx, nil)
		}}, nil
	}

	if err := clients.ConnectRedis(ctx, cfg.RedisURL, cfg.StartupPolicy()); err != nil {
		return nil, health.Check{}, err
	}
	locker := lock.NewRedisLocker(clients.Redis)
	return locker, health.Check{Name: "redis", Ping: locker.Ping}, nil
}
