package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoLocker(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	newLocker := func(mt *mtest.T) *MongoLocker {
		return &MongoLocker{collection: mt.Coll, now: func() time.Time { return now }}
	}

	mt.Run("acquire inserts a new entry", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		l, err := newLocker(mt).Acquire(context.Background(), "lock:1:A1", 10*time.Second)
		require.NoError(mt, err)
		require.Equal(mt, "lock:1:A1", l.Key)
		require.Equal(mt, now.Add(10*time.Second), l.ExpiresAt)
	})

	mt.Run("held entry is not taken over", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		_, err := newLocker(mt).Acquire(context.Background(), "lock:1:A1", 10*time.Second)
		require.ErrorIs(mt, err, ErrNotAcquired)
	})

	mt.Run("expired entry is taken over", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		l, err := newLocker(mt).Acquire(context.Background(), "lock:1:A1", 10*time.Second)
		require.NoError(mt, err)
		require.NotEmpty(mt, l.Token)
	})

	mt.Run("release removes own entry", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := newLocker(mt).Release(context.Background(), &Lock{Key: "lock:1:A1", Token: "t"})
		require.NoError(mt, err)
	})

	mt.Run("release of a lost entry reports it", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := newLocker(mt).Release(context.Background(), &Lock{Key: "lock:1:A1", Token: "t"})
		require.ErrorIs(mt, err, ErrLockLost)
	})
}
