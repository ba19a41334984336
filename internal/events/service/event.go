package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	eventserrors "ticketing/internal/events/errors"
	"ticketing/internal/projection/repository"
	apperrors "ticketing/pkg/errors"
	"ticketing/pkg/logger"
	"ticketing/pkg/model"
)

// EventReader is the read side of the projection repository.
type EventReader interface {
	FindAll(ctx context.Context) ([]*model.EventDocument, error)
	FindByEventID(ctx context.Context, eventID int64) (*model.EventDocument, error)
}

var _ EventReader = (repository.EventRepository)(nil)

const internalErrorMessage = "Internal server error"

type EventService interface {
	// List returns every event without its seats.
	List(ctx context.Context) ([]*model.EventDocument, error)
	Get(ctx context.Context, id string) (*model.EventDocument, error)
}

type eventService struct {
	repo EventReader
	log  *logger.Logger
}

func NewEventService(repo EventReader, log *logger.Logger) EventService {
	return &eventService{
		repo: repo,
		log:  log,
	}
}

func (s *eventService) List(ctx context.Context) ([]*model.EventDocument, error) {
	events, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list events", "error", err)
		return nil, apperrors.Internal(internalErrorMessage, err)
	}
	return events, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*model.EventDocument, error) {
	eventID, err := ParseEventID(id)
	if err != nil {
		return nil, apperrors.InvalidInput("Event ID must be a positive integer").WithDetails(map[string]any{
			"id": id,
		})
	}

	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventserrors.ErrEventNotFound) {
			return nil, apperrors.NotFoundWithID("Event", id)
		}
		s.log.Error("Failed to get event",
			"event_id", eventID,
			"error", err,
		)
		return nil, apperrors.Internal(internalErrorMessage, err)
	}
	return event, nil
}

func ParseEventID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, eventserrors.ErrInvalidEventID
	}
	return id, nil
}
