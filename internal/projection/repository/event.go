package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	eventserrors "ticketing/internal/events/errors"
	"ticketing/pkg/model"
)

const EventsCollection = "events"

// ApplyResult says how a seat snapshot landed in its event document.
type ApplyResult int

const (
	SeatUpdated ApplyResult = iota
	SeatAppended
	EventCreated
)

func (r ApplyResult) String() string {
	switch r {
	case SeatUpdated:
		return "updated"
	case SeatAppended:
		return "appended"
	case EventCreated:
		return "created"
	default:
		return "unknown"
	}
}

type EventRepository interface {
	ApplySeat(ctx context.Context, eventID int64, seat model.SeatSnapshot) (ApplyResult, error)
	FindAll(ctx context.Context) ([]*model.EventDocument, error)
	FindByEventID(ctx context.Context, eventID int64) (*model.EventDocument, error)
	Ping(ctx context.Context) error
}

type mongoEventRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewEventRepository(db *mongo.Database) EventRepository {
	return &mongoEventRepository{
		collection: db.Collection(EventsCollection),
		now:        time.Now,
	}
}

// ApplySeat upserts one seat into its event document, the Mongo form of
// model.EventDocument.ApplySeat:
//  1. overwrite the seat in place when the document already lists it;
//  2. otherwise push it, creating the document with default name and date;
//  3. if a concurrent writer created the document between 1 and 2 the unique
//     event_id index rejects the insert, and the in-place update is retried once.
func (r *mongoEventRepository) ApplySeat(ctx context.Context, eventID int64, seat model.SeatSnapshot) (ApplyResult, error) {
	matched, err := r.updateSeat(ctx, eventID, seat)
	if err != nil {
		return 0, err
	}
	if matched {
		return SeatUpdated, nil
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"event_id": eventID, "seats.seat_id": bson.M{"$ne": seat.SeatID}},
		bson.M{
			"$push": bson.M{"seats": seat},
			"$setOnInsert": bson.M{
				"name": model.DefaultEventName(eventID),
				"date": r.now().UTC(),
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("failed to push seat %s into event %d: %w", seat.SeatID, eventID, err)
		}
		matched, err = r.updateSeat(ctx, eventID, seat)
		if err != nil {
			return 0, err
		}
		if !matched {
			return 0, fmt.Errorf("seat %s of event %d missing after concurrent insert", seat.SeatID, eventID)
		}
		return SeatUpdated, nil
	}

	if res.UpsertedCount > 0 {
		return EventCreated, nil
	}
	return SeatAppended, nil
}

func (r *mongoEventRepository) updateSeat(ctx context.Context, eventID int64, seat model.SeatSnapshot) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"event_id": eventID, "seats.seat_id": seat.SeatID},
		bson.M{"$set": bson.M{
			"seats.$.status":  seat.Status,
			"seats.$.user_id": seat.UserID,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update seat %s of event %d: %w", seat.SeatID, eventID, err)
	}
	return res.MatchedCount > 0, nil
}

// FindAll lists every event without its seats.
func (r *mongoEventRepository) FindAll(ctx context.Context) ([]*model.EventDocument, error) {
	opts := options.Find().
		SetProjection(bson.M{"seats": 0}).
		SetSort(bson.D{{Key: "event_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*model.EventDocument{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func (r *mongoEventRepository) FindByEventID(ctx context.Context, eventID int64) (*model.EventDocument, error) {
	var event model.EventDocument
	err := r.collection.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, eventserrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	return &event, nil
}

func (r *mongoEventRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, nil)
}
