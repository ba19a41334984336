package repository

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	ticketserrors "ticketing/internal/tickets/errors"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	sqliteTimeLayout = "2006-01-02 15:04:05.000"
)

// dialect holds the few statements that differ between Postgres and SQLite.
type dialect struct {
	name    string
	nowExpr string
	schema  []string
}

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

var postgresDialect = dialect{
	name:    DriverPostgres,
	nowExpr: "NOW()",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS tickets (
			id BIGSERIAL PRIMARY KEY,
			event_id BIGINT NOT NULL,
			seat_id VARCHAR(50) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'available',
			user_id BIGINT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (event_id, seat_id)
		)`,
		`CREATE INDEX IF NOT EXISTS tickets_updated_at_idx ON tickets (updated_at)`,
	},
}

var sqliteDialect = dialect{
	name:    DriverSQLite,
	nowExpr: "strftime('%Y-%m-%d %H:%M:%f', 'now')",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS tickets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL,
			seat_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'available',
			user_id INTEGER,
			created_at TIMESTAMP NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
			updated_at TIMESTAMP NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
			UNIQUE (event_id, seat_id)
		)`,
		`CREATE INDEX IF NOT EXISTS tickets_updated_at_idx ON tickets (updated_at)`,
	},
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverPostgres:
		return postgresDialect, nil
	case DriverSQLite:
		return sqliteDialect, nil
	default:
		return dialect{}, fmt.Errorf("%w: %s", ticketserrors.ErrUnsupportedDriver, driver)
	}
}

// timeArg renders t so that it compares correctly against stored timestamps.
// SQLite keeps timestamps as text, so the argument must share their layout.
func (d dialect) timeArg(t time.Time) any {
	if d.name == DriverSQLite {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// parseTime converts whatever the driver returned for a timestamp into UTC time.
func parseTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		return parseTimeString(v)
	case []byte:
		return parseTimeString(string(v))
	case nil:
		return time.Time{}, fmt.Errorf("timestamp is null")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", raw)
	}
}

func parseTimeString(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// dbTime scans timestamps from either driver.
type dbTime struct {
	time.Time
}

func (t *dbTime) Scan(src any) error {
	parsed, err := parseTime(src)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
