package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	ticketserrors "ticketing/internal/tickets/errors"
	"ticketing/pkg/db/sqldb"
	"ticketing/pkg/model"
)

const ticketColumns = `id, event_id, seat_id, status, user_id, created_at, updated_at`

// TicketRepository is the system of record for seats.
type TicketRepository interface {
	ReserveSeat(ctx context.Context, claim *model.ClaimRequest) (*model.Ticket, error)
	FindBySeat(ctx context.Context, eventID int64, seatID string) (*model.Ticket, error)
	FindUpdatedSince(ctx context.Context, since time.Time) ([]*model.Ticket, error)
	ServerTime(ctx context.Context) (time.Time, error)
	EnsureSchema(ctx context.Context) error
	SeedSampleData(ctx context.Context) error
	Ping(ctx context.Context) error
}

type sqlTicketRepository struct {
	db      *sqlx.DB
	dialect dialect
	tx      sqldb.TransactionManager
}

func NewTicketRepository(db *sqlx.DB, driver string) (TicketRepository, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &sqlTicketRepository{
		db:      db,
		dialect: d,
		tx:      sqldb.NewTransactionManager(db),
	}, nil
}

type ticketRow struct {
	ID        int64         `db:"id"`
	EventID   int64         `db:"event_id"`
	SeatID    string        `db:"seat_id"`
	Status    string        `db:"status"`
	UserID    sql.NullInt64 `db:"user_id"`
	CreatedAt dbTime        `db:"created_at"`
	UpdatedAt dbTime        `db:"updated_at"`
}

func (r ticketRow) toModel() *model.Ticket {
	t := &model.Ticket{
		ID:        r.ID,
		EventID:   r.EventID,
		SeatID:    r.SeatID,
		Status:    model.SeatStatus(r.Status),
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
	if r.UserID.Valid {
		userID := r.UserID.Int64
		t.UserID = &userID
	}
	return t
}

// ReserveSeat moves an available seat to reserved for claim.UserID inside one
// transaction. The status predicate on the UPDATE is what guarantees at most
// one winner per seat. Returns ErrSeatUnavailable when no row matched.
func (r *sqlTicketRepository) ReserveSeat(ctx context.Context, claim *model.ClaimRequest) (*model.Ticket, error) {
	query := r.db.Rebind(fmt.Sprintf(`
		UPDATE tickets
		SET status = ?, user_id = ?, updated_at = %s
		WHERE event_id = ? AND seat_id = ? AND status = ?`, r.dialect.nowExpr))

	var reserved *model.Ticket
	err := r.tx.ExecuteTransaction(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, model.SeatReserved, claim.UserID, claim.EventID, claim.SeatID, model.SeatAvailable)
		if err != nil {
			return fmt.Errorf("failed to reserve seat %s of event %d: %w", claim.SeatID, claim.EventID, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			return ticketserrors.ErrSeatUnavailable
		}

		reserved, err = r.findBySeat(ctx, tx, claim.EventID, claim.SeatID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reserved, nil
}

func (r *sqlTicketRepository) FindBySeat(ctx context.Context, eventID int64, seatID string) (*model.Ticket, error) {
	return r.findBySeat(ctx, r.db, eventID, seatID)
}

func (r *sqlTicketRepository) findBySeat(ctx context.Context, q sqlx.QueryerContext, eventID int64, seatID string) (*model.Ticket, error) {
	query := r.db.Rebind(`SELECT ` + ticketColumns + ` FROM tickets WHERE event_id = ? AND seat_id = ?`)

	var row ticketRow
	if err := sqlx.GetContext(ctx, q, &row, query, eventID, seatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticketserrors.ErrSeatUnavailable
		}
		return nil, fmt.Errorf("failed to load seat %s of event %d: %w", seatID, eventID, err)
	}
	return row.toModel(), nil
}

// FindUpdatedSince returns every ticket with updated_at >= since. The bound is
// inclusive so rows sharing the checkpoint timestamp are never skipped.
func (r *sqlTicketRepository) FindUpdatedSince(ctx context.Context, since time.Time) ([]*model.Ticket, error) {
	query := r.db.Rebind(`SELECT ` + ticketColumns + ` FROM tickets WHERE updated_at >= ? ORDER BY updated_at, id`)

	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, query, r.dialect.timeArg(since)); err != nil {
		return nil, fmt.Errorf("failed to query tickets updated since %s: %w", since.Format(time.RFC3339Nano), err)
	}

	tickets := make([]*model.Ticket, 0, len(rows))
	for _, row := range rows {
		tickets = append(tickets, row.toModel())
	}
	return tickets, nil
}

// ServerTime reads the store's clock, which is the clock updated_at comes from.
func (r *sqlTicketRepository) ServerTime(ctx context.Context) (time.Time, error) {
	var raw any
	if err := r.db.QueryRowxContext(ctx, `SELECT `+r.dialect.nowExpr).Scan(&raw); err != nil {
		return time.Time{}, fmt.Errorf("failed to read server time: %w", err)
	}
	return parseTime(raw)
}

// EnsureSchema creates the tickets table and its indexes when missing.
func (r *sqlTicketRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range r.dialect.schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

var sampleSeats = []struct {
	EventID int64
	SeatID  string
}{
	{1, "A1"}, {1, "A2"}, {1, "A3"}, {1, "B1"}, {1, "B2"},
	{2, "A1"}, {2, "A2"}, {2, "B1"},
}

// SeedSampleData inserts a few available seats, leaving existing rows untouched.
func (r *sqlTicketRepository) SeedSampleData(ctx context.Context) error {
	query := r.db.Rebind(`
		INSERT INTO tickets (event_id, seat_id, status)
		VALUES (?, ?, ?)
		ON CONFLICT (event_id, seat_id) DO NOTHING`)

	return r.tx.ExecuteTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, s := range sampleSeats {
			if _, err := tx.ExecContext(ctx, query, s.EventID, s.SeatID, model.SeatAvailable); err != nil {
				return fmt.Errorf("failed to seed seat %s of event %d: %w", s.SeatID, s.EventID, err)
			}
		}
		return nil
	})
}

func (r *sqlTicketRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
