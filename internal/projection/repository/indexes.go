package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var eventsIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "event_id", Value: 1}},
		Options: options.Index().SetName("event_id_unique").SetUnique(true),
	},
}

// EnsureIndexes creates the projection indexes. The unique event_id index is
// what turns a racing second insert into a duplicate key error.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(EventsCollection).Indexes().CreateMany(ctx, eventsIndexes); err != nil {
		return fmt.Errorf("failed to ensure indexes for %s: %w", EventsCollection, err)
	}
	return nil
}
