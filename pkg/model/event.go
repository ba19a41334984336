package model

import (
	"fmt"
	"time"
)

type SeatSnapshot struct {
	SeatID string     `json:"seat_id" bson:"seat_id"`
	Status SeatStatus `json:"status" bson:"status"`
	UserID *int64     `json:"user_id" bson:"user_id"`
}

// EventDocument is the read-side view of an event and its seats.
type EventDocument struct {
	EventID int64          `json:"event_id" bson:"event_id"`
	Name    string         `json:"name" bson:"name"`
	Date    time.Time      `json:"date" bson:"date"`
	Seats   []SeatSnapshot `json:"seats,omitempty" bson:"seats,omitempty"`
}

func DefaultEventName(eventID int64) string {
	return fmt.Sprintf("Event %d", eventID)
}

// NewEventDocument builds the document inserted the first time a seat of eventID is seen.
func NewEventDocument(eventID int64, now time.Time) *EventDocument {
	return &EventDocument{
		EventID: eventID,
		Name:    DefaultEventName(eventID),
		Date:    now,
	}
}

// ApplySeat overwrites the seat with the same id or appends it. Applying the
// same snapshot twice leaves the document as after the first application.
// Reports whether the seat was appended.
func (d *EventDocument) ApplySeat(seat SeatSnapshot) bool {
	for i := range d.Seats {
		if d.Seats[i].SeatID == seat.SeatID {
			d.Seats[i].Status = seat.Status
			d.Seats[i].UserID = seat.UserID
			return false
		}
	}
	d.Seats = append(d.Seats, seat)
	return true
}

// Seat returns the seat with the given id, if present.
func (d *EventDocument) Seat(seatID string) (SeatSnapshot, bool) {
	for _, s := range d.Seats {
		if s.SeatID == seatID {
			return s, true
		}
	}
	return SeatSnapshot{}, false
}
