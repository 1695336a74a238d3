package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresSlot keeps each slot as one row of a small key-value table.
type PostgresSlot struct {
	db *sql.DB
}

func NewPostgresSlot(db *sql.DB) *PostgresSlot {
	return &PostgresSlot{db: db}
}

// EnsureSchema creates the backing table when it is missing.
func (r *PostgresSlot) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS kv_slots (
			slot_key   TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create kv_slots: %w", err)
	}
	return nil
}

func (r *PostgresSlot) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	query := `SELECT value FROM kv_slots WHERE slot_key = $1`

	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// Save upserts the slot in a single statement.
func (r *PostgresSlot) Save(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_slots (slot_key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slot_key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, key, string(value))
	return err
}
