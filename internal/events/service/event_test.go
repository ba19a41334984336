package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	eventserrors "ticketing/internal/events/errors"
	apperrors "ticketing/pkg/errors"
	"ticketing/pkg/logger"
	"ticketing/pkg/model"
)

type mockEventReader struct {
	findAllFunc       func(ctx context.Context) ([]*model.EventDocument, error)
	findByEventIDFunc func(ctx context.Context, eventID int64) (*model.EventDocument, error)
}

func (m *mockEventReader) FindAll(ctx context.Context) ([]*model.EventDocument, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []*model.EventDocument{}, nil
}

func (m *mockEventReader) FindByEventID(ctx context.Context, eventID int64) (*model.EventDocument, error) {
	if m.findByEventIDFunc != nil {
		return m.findByEventIDFunc(ctx, eventID)
	}
	return nil, eventserrors.ErrEventNotFound
}

func TestList(t *testing.T) {
	date := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockEventReader{
		findAllFunc: func(context.Context) ([]*model.EventDocument, error) {
			return []*model.EventDocument{
				{EventID: 1, Name: "Event 1", Date: date},
				{EventID: 2, Name: "Event 2", Date: date},
			}, nil
		},
	}

	events, err := NewEventService(repo, logger.Discard()).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("List() returned %d events, want 2", len(events))
	}
}

func TestList_RepositoryFailure(t *testing.T) {
	repo := &mockEventReader{
		findAllFunc: func(context.Context) ([]*model.EventDocument, error) {
			return nil, errors.New("connection refused")
		},
	}

	_, err := NewEventService(repo, logger.Discard()).List(context.Background())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("List() error = %v, want internal error", err)
	}
}

func TestGet(t *testing.T) {
	var requested int64
	repo := &mockEventReader{
		findByEventIDFunc: func(_ context.Context, eventID int64) (*model.EventDocument, error) {
			requested = eventID
			if eventID == 5 {
				return &model.EventDocument{
					EventID: 5,
					Name:    "Event 5",
					Seats:   []model.SeatSnapshot{{SeatID: "C3", Status: model.SeatAvailable}},
				}, nil
			}
			return nil, eventserrors.ErrEventNotFound
		},
	}
	svc := NewEventService(repo, logger.Discard())

	event, err := svc.Get(context.Background(), "5")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if requested != 5 || len(event.Seats) != 1 {
		t.Errorf("Get() = %+v (requested %d), want event 5 with one seat", event, requested)
	}
}

func TestGet_Errors(t *testing.T) {
	repo := &mockEventReader{
		findByEventIDFunc: func(_ context.Context, eventID int64) (*model.EventDocument, error) {
			if eventID == 13 {
				return nil, errors.New("socket closed")
			}
			return nil, eventserrors.ErrEventNotFound
		},
	}
	svc := NewEventService(repo, logger.Discard())

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantCode   string
	}{
		{name: "not found", id: "99", wantStatus: http.StatusNotFound, wantCode: apperrors.CodeNotFound},
		{name: "not a number", id: "abc", wantStatus: http.StatusBadRequest, wantCode: apperrors.CodeInvalidInput},
		{name: "zero", id: "0", wantStatus: http.StatusBadRequest, wantCode: apperrors.CodeInvalidInput},
		{name: "negative", id: "-4", wantStatus: http.StatusBadRequest, wantCode: apperrors.CodeInvalidInput},
		{name: "store failure", id: "13", wantStatus: http.StatusInternalServerError, wantCode: apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Get(context.Background(), tt.id)
			appErr := apperrors.AsAppError(err)
			if appErr == nil {
				t.Fatalf("Get(%q) error = %v, want app error", tt.id, err)
			}
			if appErr.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", appErr.StatusCode(), tt.wantStatus)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestParseEventID(t *testing.T) {
	if id, err := ParseEventID(" 42 "); err != nil || id != 42 {
		t.Errorf("ParseEventID(\" 42 \") = %d, %v", id, err)
	}
	if _, err := ParseEventID("1.5"); !errors.Is(err, eventserrors.ErrInvalidEventID) {
		t.Errorf("ParseEventID(\"1.5\") error = %v, want ErrInvalidEventID", err)
	}
}

func TestGet_NotFoundMessage(t *testing.T) {
	_, err := NewEventService(&mockEventReader{}, logger.Discard()).Get(context.Background(), "99")
	if appErr := apperrors.AsAppError(err); appErr.Message != "Event not found" {
		t.Errorf("message = %q, want %q", appErr.Message, "Event not found")
	}
}
