// Package client owns the connections a service opens at startup and closes on shutdown.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite"

	"ticketing/pkg/logger"
	"ticketing/pkg/retry"
)

const sqliteDriver = "sqlite"

// Client is the dependency bundle built in main. Any field may be nil when the
// service does not use that store.
type Client struct {
	Mongo *mongo.Client
	SQL   *sqlx.DB
	Redis *redis.Client

	log *logger.Logger
}

func New(log *logger.Logger) *Client {
	return &Client{log: log}
}

// ConnectMongo connects and pings MongoDB, retrying under policy.
func (c *Client) ConnectMongo(ctx context.Context, uri string, connTimeout time.Duration, policy retry.Policy) error {
	client, err := retry.Do(ctx, c.log, "mongodb", policy, func(ctx context.Context) (*mongo.Client, error) {
		ctx, cancel := context.WithTimeout(ctx, connTimeout)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		return client, nil
	})
	if err != nil {
		return err
	}

	c.log.Info("Successfully connected to MongoDB")
	c.Mongo = client
	return nil
}

// ConnectSQL opens the system-of-record database for driver ("postgres" or "sqlite").
func (c *Client) ConnectSQL(ctx context.Context, driver, dsn string, policy retry.Policy) error {
	db, err := retry.Do(ctx, c.log, driver, policy, func(ctx context.Context) (*sqlx.DB, error) {
		db, err := sqlx.ConnectContext(ctx, driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
		}
		return db, nil
	})
	if err != nil {
		return err
	}

	if driver == sqliteDriver {
		// SQLite allows one writer; serialize through a single connection.
		db.SetMaxOpenConns(1)
	}

	c.log.Info("Successfully connected to SQL store", "driver", driver)
	c.SQL = db
	return nil
}

// ConnectRedis parses a redis:// URL and pings the server.
func (c *Client) ConnectRedis(ctx context.Context, url string, policy retry.Policy) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	_, err = retry.Do(ctx, c.log, "redis", policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.log.Info("Successfully connected to Redis")
	c.Redis = rdb
	return nil
}

// Close releases every open connection. Errors are logged and joined.
func (c *Client) Close(ctx context.Context) error {
	var errs []error

	if c.SQL != nil {
		if err := c.SQL.Close(); err != nil {
			c.log.Error("Failed to close SQL store", "error", err)
			errs = append(errs, err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.log.Error("Failed to close Redis", "error", err)
			errs = append(errs, err)
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			c.log.Error("Failed to disconnect MongoDB", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		c.log.Info("All connections closed")
	}
	return errors.Join(errs...)
}
