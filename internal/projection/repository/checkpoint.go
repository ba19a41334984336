package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ticketing/pkg/model"
)

const SyncStateCollection = "sync_state"

// CheckpointRepository persists the replication checkpoint.
type CheckpointRepository interface {
	Load(ctx context.Context) (time.Time, error)
	Save(ctx context.Context, ts time.Time) error
}

type mongoCheckpointRepository struct {
	collection *mongo.Collection
}

func NewCheckpointRepository(db *mongo.Database) CheckpointRepository {
	return &mongoCheckpointRepository{collection: db.Collection(SyncStateCollection)}
}

// Load returns the stored checkpoint, or the Unix epoch when none exists yet.
func (r *mongoCheckpointRepository) Load(ctx context.Context) (time.Time, error) {
	var state model.SyncState
	err := r.collection.FindOne(ctx, bson.M{"_id": model.SyncStateID}).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return time.Unix(0, 0).UTC(), nil
		}
		return time.Time{}, fmt.Errorf("failed to load sync checkpoint: %w", err)
	}
	return state.LastSyncTimestamp.UTC(), nil
}

// Save stores ts unless a later checkpoint is already stored.
func (r *mongoCheckpointRepository) Save(ctx context.Context, ts time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": model.SyncStateID},
		bson.M{"$max": bson.M{"last_sync_timestamp": ts.UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save sync checkpoint: %w", err)
	}
	return nil
}
