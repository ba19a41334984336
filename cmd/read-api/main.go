package main

import (
	"context"
	"time"

	"ticketing/internal/events/handler"
	"ticketing/internal/events/service"
	"ticketing/internal/projection/repository"
	"ticketing/pkg/app"
	"ticketing/pkg/client"
	"ticketing/pkg/config"
	"ticketing/pkg/health"
)

const ServiceName = "read-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Read API")

	if err := run(cfg); err != nil {
		cfg.Log.Fatal("Read API stopped with error", "error", err)
	}
	cfg.Log.Info("Read API stopped")
}

func run(cfg *config.Config) error {
	clients := client.New(cfg.Log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = clients.Close(ctx)
	}()

	if err := clients.ConnectMongo(context.Background(), cfg.MongoURI, cfg.MongoConnTimeout, cfg.StartupPolicy()); err != nil {
		return err
	}

	eventRepo := repository.NewEventRepository(clients.Mongo.Database(cfg.MongoDatabaseName))
	eventService := service.NewEventService(eventRepo, cfg.Log)
	cfg.Log.Info("Event service initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewEventHandler(eventService, cfg.Log),
		health.Check{Name: "mongodb", Ping: eventRepo.Ping},
	)
	return serverApp.Run()
}
