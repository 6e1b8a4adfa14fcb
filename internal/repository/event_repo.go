package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"switchbot_panel/internal/models"

	"github.com/google/uuid"
)

// sqlite TIMESTAMP text layout
const eventTimeLayout = "2006-01-02 15:04:05"

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

var _ EventRepo = (*EventSQLite)(nil)

// Append inserts a log entry. Missing EventID and Timestamp are filled in.
func (r *EventSQLite) Append(ctx context.Context, e models.LogEntry) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO panel_events (id, seq, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.EventID,
		e.Seq,
		e.Timestamp.UTC().Format(eventTimeLayout),
		normalizeKind(string(e.Kind)),
		e.Message,
		metaPtr,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// List returns entries in [from, to] (zero bounds are open) of the given kind,
// most recent first.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, kind string) ([]models.LogEntry, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(eventTimeLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(eventTimeLayout))
	}
	if kind = normalizeKind(kind); kind != "" {
		conds = append(conds, "type = ?")
		args = append(args, kind)
	}

	q := `SELECT id, seq, occurred_at, type, message, meta FROM panel_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at DESC, seq DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := make([]models.LogEntry, 0, 64)
	for rows.Next() {
		var (
			e       models.LogEntry
			kindStr string
			metaStr sql.NullString
		)
		if err := rows.Scan(&e.EventID, &e.Seq, &e.Timestamp, &kindStr, &e.Message, &metaStr); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		e.Kind = models.LogKind(kindStr)

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				e.Metadata = v
			} else {
				e.Metadata = metaStr.String
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeKind(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
