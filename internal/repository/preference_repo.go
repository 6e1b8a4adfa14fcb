package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PreferenceSQLite implements PreferenceRepo on the preferences table.
type PreferenceSQLite struct {
	db *sql.DB
}

func NewPreferenceSQLite(db *sql.DB) *PreferenceSQLite {
	return &PreferenceSQLite{db: db}
}

var _ PreferenceRepo = (*PreferenceSQLite)(nil)

const (
	selectPreferenceSQL = `SELECT value FROM preferences WHERE key = ?`

	upsertPreferenceSQL = `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	deletePreferenceSQL = `DELETE FROM preferences WHERE key = ?`
)

// Read returns the stored value and whether the key exists.
func (r *PreferenceSQLite) Read(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, selectPreferenceSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read preference %q: %w", key, err)
	}
	return value, true, nil
}

// Write inserts or replaces the value for key.
func (r *PreferenceSQLite) Write(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, upsertPreferenceSQL, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("write preference %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *PreferenceSQLite) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, deletePreferenceSQL, key); err != nil {
		return fmt.Errorf("delete preference %q: %w", key, err)
	}
	return nil
}
