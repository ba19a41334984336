package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	eventserrors "ticketing/internal/events/errors"
	"ticketing/pkg/model"
)

func updateResponse(matched, modified int32) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: modified},
	)
}

func upsertResponse() bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: int32(1)},
		bson.E{Key: "nModified", Value: int32(0)},
		bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: int32(0)}, {Key: "_id", Value: "new"}}}},
	)
}

func duplicateKeyResponse() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"})
}

func TestEventRepository_ApplySeat(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	seat := model.SeatSnapshot{SeatID: "C3", Status: model.SeatAvailable}

	newRepo := func(mt *mtest.T) *mongoEventRepository {
		return &mongoEventRepository{collection: mt.Coll, now: time.Now}
	}

	mt.Run("existing seat is updated in place", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(1, 1))

		result, err := newRepo(mt).ApplySeat(context.Background(), 5, seat)
		require.NoError(mt, err)
		require.Equal(mt, SeatUpdated, result)
	})

	mt.Run("missing event is created", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(0, 0), upsertResponse())

		result, err := newRepo(mt).ApplySeat(context.Background(), 5, seat)
		require.NoError(mt, err)
		require.Equal(mt, EventCreated, result)
	})

	mt.Run("new seat is appended to existing event", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(0, 0), updateResponse(1, 1))

		result, err := newRepo(mt).ApplySeat(context.Background(), 1, seat)
		require.NoError(mt, err)
		require.Equal(mt, SeatAppended, result)
	})

	mt.Run("concurrent insert falls back to in-place update", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(0, 0), duplicateKeyResponse(), updateResponse(1, 1))

		result, err := newRepo(mt).ApplySeat(context.Background(), 5, seat)
		require.NoError(mt, err)
		require.Equal(mt, SeatUpdated, result)
	})

	mt.Run("write failure is returned", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad value"}))

		_, err := newRepo(mt).ApplySeat(context.Background(), 5, seat)
		require.Error(mt, err)
	})
}

func TestEventRepository_Find(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by event id", func(mt *mtest.T) {
		repo := &mongoEventRepository{collection: mt.Coll, now: time.Now}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "event_id", Value: int64(1)},
			{Key: "name", Value: "Event 1"},
			{Key: "seats", Value: bson.A{
				bson.D{{Key: "seat_id", Value: "A1"}, {Key: "status", Value: "reserved"}, {Key: "user_id", Value: int64(7)}},
			}},
		}))

		event, err := repo.FindByEventID(context.Background(), 1)
		require.NoError(mt, err)
		require.Equal(mt, "Event 1", event.Name)
		require.Len(mt, event.Seats, 1)
		require.Equal(mt, int64(7), *event.Seats[0].UserID)
	})

	mt.Run("missing event", func(mt *mtest.T) {
		repo := &mongoEventRepository{collection: mt.Coll, now: time.Now}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByEventID(context.Background(), 42)
		require.ErrorIs(mt, err, eventserrors.ErrEventNotFound)
	})

	mt.Run("list all", func(mt *mtest.T) {
		repo := &mongoEventRepository{collection: mt.Coll, now: time.Now}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "event_id", Value: int64(1)}, {Key: "name", Value: "Event 1"}},
			bson.D{{Key: "event_id", Value: int64(2)}, {Key: "name", Value: "Event 2"}},
		))

		events, err := repo.FindAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, events, 2)
		require.Nil(mt, events[0].Seats)
	})
}

func TestCheckpointRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing checkpoint is the epoch", func(mt *mtest.T) {
		repo := &mongoCheckpointRepository{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		ts, err := repo.Load(context.Background())
		require.NoError(mt, err)
		require.True(mt, ts.Equal(time.Unix(0, 0)))
	})

	mt.Run("stored checkpoint is returned", func(mt *mtest.T) {
		repo := &mongoCheckpointRepository{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		stored := time.Date(2026, 2, 3, 4, 5, 6, 7_000_000, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: model.SyncStateID},
			{Key: "last_sync_timestamp", Value: stored},
		}))

		ts, err := repo.Load(context.Background())
		require.NoError(mt, err)
		require.True(mt, ts.Equal(stored), "got %s", ts)
	})

	mt.Run("save upserts", func(mt *mtest.T) {
		repo := &mongoCheckpointRepository{collection: mt.Coll}
		mt.AddMockResponses(upsertResponse())

		require.NoError(mt, repo.Save(context.Background(), time.Now()))
	})
}
