package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"switchbot_panel/internal/models"
)

// RunSQLite keeps a single row (id=1) with the latest shutdown run.
type RunSQLite struct {
	db *sql.DB
}

func NewRunSQLite(db *sql.DB) *RunSQLite {
	return &RunSQLite{db: db}
}

var _ RunRepo = (*RunSQLite)(nil)

const (
	lastRunRowID = 1

	upsertRunSQL = `
		INSERT INTO shutdown_runs (id, action, started_at, finished_at, outcomes, power_message, power_error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			action=excluded.action,
			started_at=excluded.started_at,
			finished_at=excluded.finished_at,
			outcomes=excluded.outcomes,
			power_message=excluded.power_message,
			power_error=excluded.power_error
	`

	selectRunSQL = `
		SELECT action, started_at, finished_at, outcomes, power_message, power_error
		FROM shutdown_runs WHERE id=?
	`
)

func marshalOutcomes(outcomes []models.DeviceOutcome) (string, error) {
	if outcomes == nil {
		outcomes = []models.DeviceOutcome{}
	}
	b, err := json.Marshal(outcomes)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalOutcomes(s string) ([]models.DeviceOutcome, error) {
	if s == "" {
		return nil, nil
	}
	var outcomes []models.DeviceOutcome
	if err := json.Unmarshal([]byte(s), &outcomes); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Save replaces the stored run. Times are persisted in UTC.
func (r *RunSQLite) Save(ctx context.Context, run models.ShutdownRun) error {
	outcomes, err := marshalOutcomes(run.Outcomes)
	if err != nil {
		return fmt.Errorf("marshal outcomes: %w", err)
	}

	_, err = r.db.ExecContext(ctx, upsertRunSQL,
		lastRunRowID,
		string(run.Action),
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
		outcomes,
		nullIfEmpty(run.PowerMessage),
		nullIfEmpty(run.PowerError),
	)
	if err != nil {
		return fmt.Errorf("save shutdown run: %w", err)
	}
	return nil
}

// Load returns the stored run, or false when no run happened yet.
func (r *RunSQLite) Load(ctx context.Context) (models.ShutdownRun, bool, error) {
	row := r.db.QueryRowContext(ctx, selectRunSQL, lastRunRowID)

	var (
		run          models.ShutdownRun
		action       string
		outcomesStr  string
		powerMessage sql.NullString
		powerError   sql.NullString
	)
	if err := row.Scan(&action, &run.StartedAt, &run.FinishedAt, &outcomesStr, &powerMessage, &powerError); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ShutdownRun{}, false, nil
		}
		return models.ShutdownRun{}, false, fmt.Errorf("load shutdown run: %w", err)
	}

	outcomes, err := unmarshalOutcomes(outcomesStr)
	if err != nil {
		return models.ShutdownRun{}, false, fmt.Errorf("decode outcomes: %w", err)
	}

	run.Action = models.PowerAction(action)
	run.Outcomes = outcomes
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()
	run.PowerMessage = powerMessage.String
	run.PowerError = powerError.String
	return run, true, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
