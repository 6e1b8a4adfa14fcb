package repository

import (
	"context"
	"database/sql"
	"time"

	"switchbot_panel/internal/models"
)

// PreferenceRepo is the key-value collaborator for per-device overrides.
type PreferenceRepo interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// EventRepo stores the history of session log entries.
type EventRepo interface {
	Append(ctx context.Context, e models.LogEntry) error
	List(ctx context.Context, from, to time.Time, kind string) ([]models.LogEntry, error)
}

// RunRepo keeps the most recent shutdown run.
type RunRepo interface {
	Save(ctx context.Context, run models.ShutdownRun) error
	Load(ctx context.Context) (models.ShutdownRun, bool, error)
}

type Repository struct {
	Preferences PreferenceRepo
	Events      EventRepo
	Runs        RunRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Preferences: NewPreferenceSQLite(db),
		Events:      NewEventSQLite(db),
		Runs:        NewRunSQLite(db),
	}
}
