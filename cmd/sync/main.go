package main

import (
	"context"
	"time"

	"ticketing/internal/projection/repository"
	"ticketing/internal/syncer/service"
	ticketsrepository "ticketing/internal/tickets/repository"
	"ticketing/pkg/app"
	"ticketing/pkg/client"
	"ticketing/pkg/config"
	"ticketing/pkg/health"
)

const ServiceName = "sync"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Sync Projector")

	if err := run(cfg); err != nil {
		cfg.Log.Fatal("Sync Projector stopped with error", "error", err)
	}
	cfg.Log.Info("Sync Projector stopped")
}

func run(cfg *config.Config) error {
	ctx := context.Background()

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
	tickets, err := ticketsrepository.NewTicketRepository(clients.SQL, driver)
	if err != nil {
		return err
	}
	if err := tickets.EnsureSchema(ctx); err != nil {
		return err
	}

	if err := clients.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoConnTimeout, cfg.StartupPolicy()); err != nil {
		return err
	}
	db := clients.Mongo.Database(cfg.MongoDatabaseName)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	events := repository.NewEventRepository(db)

	projector := service.NewProjector(tickets, events, repository.NewCheckpointRepository(db), service.Options{
		Interval:             cfg.SyncInterval,
		MaxConsecutiveErrors: cfg.SyncMaxConsecutiveErrors,
		ErrorBackoff:         cfg.SyncErrorBackoff,
		CycleTimeout:         cfg.SyncCycleTimeout,
	}, cfg.Log)
	cfg.Log.Info("Sync projector initialized",
		"interval", cfg.SyncInterval,
		"database", cfg.MongoDatabaseName,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(nil,
		health.Check{Name: "sql", Ping: tickets.Ping},
		health.Check{Name: "mongodb", Ping: events.Ping},
	)
	serverApp.AddBackground("sync-projector", projector.Run)
	return serverApp.Run()
}
