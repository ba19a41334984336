package lock

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const LocksCollection = "locks"

type lockDocument struct {
	ID        string    `bson:"_id"`
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoLocker keeps one document per held key. The unique _id makes the insert
// the create-if-absent step; expired entries may be taken over before the TTL
// monitor removes them.
type MongoLocker struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoLocker(db *mongo.Database) *MongoLocker {
	return &MongoLocker{
		collection: db.Collection(LocksCollection),
		now:        time.Now,
	}
}

func (m *MongoLocker) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("failed to create lock ttl index: %w", err)
	}
	return nil
}

func (m *MongoLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	now := m.now().UTC()
	doc := lockDocument{
		ID:        key,
		Token:     newToken(),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := m.collection.InsertOne(ctx, doc)
	if err == nil {
		return &Lock{Key: key, Token: doc.Token, ExpiresAt: doc.ExpiresAt}, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": key, "expires_at": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{
			"token":      doc.Token,
			"expires_at": doc.ExpiresAt,
			"created_at": doc.CreatedAt,
		}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to take over expired lock %s: %w", key, err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotAcquired
	}
	return &Lock{Key: key, Token: doc.Token, ExpiresAt: doc.ExpiresAt}, nil
}

func (m *MongoLocker) Release(ctx context.Context, l *Lock) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": l.Key, "token": l.Token})
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.Key, err)
	}
	if res.DeletedCount == 0 {
		return ErrLockLost
	}
	return nil
}
