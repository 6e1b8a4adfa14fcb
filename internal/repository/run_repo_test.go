package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"switchbot_panel/internal/models"
	"switchbot_panel/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

type sqlmockArgumentFunc func(v driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool {
	return f(v)
}

const selectRunPrefix = "SELECT action, started_at, finished_at, outcomes, power_message, power_error"

func TestRunSQLite_Save_MarshalsOutcomesAndUTC(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewRunSQLite(db)

	tokyo := time.FixedZone("JST", 9*3600)
	started := time.Date(2025, 3, 1, 23, 30, 0, 0, tokyo)

	isUTC := func(want time.Time) sqlmockArgumentFunc {
		return func(v driver.Value) bool {
			tm, ok := v.(time.Time)
			return ok && tm.Location() == time.UTC && tm.Equal(want)
		}
	}

	run := models.ShutdownRun{
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Action:     models.PowerActionSleep,
		Outcomes: []models.DeviceOutcome{
			{DeviceID: "L1", Name: "Lamp", Kind: models.KindInfrared, Command: "turnOff", Status: models.OutcomeOK},
		},
		PowerMessage: "sleeping",
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shutdown_runs")).
		WithArgs(
			1,
			"sleep",
			isUTC(started),
			isUTC(started.Add(2*time.Second)),
			`[{"device_id":"L1","name":"Lamp","kind":"infrared","command":"turnOff","status":"ok"}]`,
			"sleeping",
			nil,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), run); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRunSQLite_Save_NilOutcomesStoredAsEmptyArray(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewRunSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shutdown_runs")).
		WithArgs(1, "shutdown", sqlmock.AnyArg(), sqlmock.AnyArg(), "[]", nil, "boom").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Save(context.Background(), models.ShutdownRun{
		Action:     models.PowerActionShutdown,
		PowerError: "boom",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

func TestRunSQLite_Load_NoRows(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewRunSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectRunPrefix)).
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	_, ok, err := repo.Load(context.Background())
	if err != nil || ok {
		t.Fatalf("Load() = ok %v, err %v; want false, nil", ok, err)
	}
}

func TestRunSQLite_Load_HappyPath(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewRunSQLite(db)

	started := time.Date(2024, 2, 1, 8, 30, 0, 0, time.FixedZone("EST", -5*3600))

	rows := sqlmock.NewRows([]string{"action", "started_at", "finished_at", "outcomes", "power_message", "power_error"}).
		AddRow("shutdown", started, started.Add(time.Second),
			`[{"device_id":"H1","name":"Hub","kind":"physical","status":"skipped"}]`, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectRunPrefix)).
		WithArgs(1).
		WillReturnRows(rows)

	run, ok, err := repo.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("Load() = ok %v, err %v", ok, err)
	}
	if run.Action != models.PowerActionShutdown {
		t.Fatalf("action = %q", run.Action)
	}
	if run.StartedAt.Location() != time.UTC {
		t.Fatalf("StartedAt not UTC: %v", run.StartedAt.Location())
	}
	if len(run.Outcomes) != 1 || run.Outcomes[0].Status != models.OutcomeSkipped {
		t.Fatalf("outcomes = %+v", run.Outcomes)
	}
	if run.PowerMessage != "" || run.PowerError != "" {
		t.Fatalf("expected empty power fields, got %+v", run)
	}
}

func TestRunSQLite_Load_BadOutcomesJSON(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewRunSQLite(db)

	rows := sqlmock.NewRows([]string{"action", "started_at", "finished_at", "outcomes", "power_message", "power_error"}).
		AddRow("sleep", time.Now(), time.Now(), `{not json`, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectRunPrefix)).
		WithArgs(1).
		WillReturnRows(rows)

	if _, _, err := repo.Load(context.Background()); err == nil {
		t.Fatal("Load() expected error for malformed outcomes")
	}
}

func TestRunSQLite_Save_ExecError(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewRunSQLite(db)

	boom := errors.New("db down")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shutdown_runs")).
		WillReturnError(boom)

	if err := repo.Save(context.Background(), models.ShutdownRun{Action: models.PowerActionSleep}); !errors.Is(err, boom) {
		t.Fatalf("Save() error = %v, want %v", err, boom)
	}
}
