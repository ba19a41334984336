package model

import "time"

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatReserved  SeatStatus = "reserved"
	SeatHeld      SeatStatus = "held"
)

// Ticket is one seat of one event in the system of record.
type Ticket struct {
	ID        int64      `json:"id" db:"id"`
	EventID   int64      `json:"event_id" db:"event_id"`
	SeatID    string     `json:"seat_id" db:"seat_id"`
	Status    SeatStatus `json:"status" db:"status"`
	UserID    *int64     `json:"user_id" db:"user_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Snapshot is the part of a ticket replicated into the read projection.
func (t *Ticket) Snapshot() SeatSnapshot {
	return SeatSnapshot{
		SeatID: t.SeatID,
		Status: t.Status,
		UserID: t.UserID,
	}
}
