package sqldb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type TransactionFunc func(tx *sqlx.Tx) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type sqlTransactionManager struct {
	db *sqlx.DB
}

func NewTransactionManager(db *sqlx.DB) TransactionManager {
	return &sqlTransactionManager{db: db}
}

// ExecuteTransaction commits when fn returns nil and rolls back otherwise,
// including when fn panics. The error from fn is returned unwrapped so callers
// can match sentinels.
func (m *sqlTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) (err error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
