package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"switchbot_panel/internal/logger"
	"switchbot_panel/internal/models"
	"switchbot_panel/internal/repository"

	"github.com/google/uuid"
)

// LogSink receives every appended session log entry.
type LogSink interface {
	PublishLog(e models.LogEntry)
}

// EventLogService is the append-only session log. Entries are kept in memory
// for the session and mirrored to the history table.
type EventLogService struct {
	mu      sync.RWMutex
	entries []models.LogEntry // append order
	seq     int64
	sinks   []LogSink

	eventRepo repository.EventRepo
	log       *logger.Logger
	now       func() time.Time
}

func NewEventLogService(eventRepo repository.EventRepo, log *logger.Logger) *EventLogService {
	if log == nil {
		log = logger.Nop()
	}
	return &EventLogService{eventRepo: eventRepo, log: log, now: time.Now}
}

// AddSink registers a sink. Not safe to call concurrently with Append.
func (s *EventLogService) AddSink(sink LogSink) {
	s.sinks = append(s.sinks, sink)
}

func (s *EventLogService) Info(ctx context.Context, msg string) models.LogEntry {
	return s.Append(ctx, models.LogInfo, msg, nil)
}

func (s *EventLogService) Error(ctx context.Context, msg string) models.LogEntry {
	return s.Append(ctx, models.LogError, msg, nil)
}

// Append adds an entry and returns it with its sequence number set.
func (s *EventLogService) Append(ctx context.Context, kind models.LogKind, msg string, meta any) models.LogEntry {
	s.mu.Lock()
	s.seq++
	e := models.LogEntry{
		Seq:       s.seq,
		EventID:   uuid.NewString(),
		Timestamp: s.now().UTC(),
		Message:   msg,
		Kind:      kind,
		Metadata:  meta,
	}
	s.entries = append(s.entries, e)
	s.mu.Unlock()

	if s.eventRepo != nil {
		if err := s.eventRepo.Append(context.WithoutCancel(ctx), e); err != nil {
			s.log.Errorw("event_mirror_failed", "err", err, "seq", e.Seq)
		}
	}
	for _, sink := range s.sinks {
		sink.PublishLog(e)
	}
	return e
}

// Entries returns the session log, most recent first.
func (s *EventLogService) Entries() []models.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.LogEntry, len(s.entries))
	for i, e := range s.entries {
		out[len(s.entries)-1-i] = e
	}
	return out
}

// Since returns entries with Seq > seq in append order.
func (s *EventLogService) Since(seq int64) []models.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// seq values are dense and start at 1
	start := int(seq)
	if start < 0 {
		start = 0
	}
	if start >= len(s.entries) {
		return nil
	}
	out := make([]models.LogEntry, len(s.entries)-start)
	copy(out, s.entries[start:])
	return out
}

// LastSeq is the sequence number of the newest entry, 0 when empty.
func (s *EventLogService) LastSeq() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// History queries persisted entries, most recent first.
func (s *EventLogService) History(ctx context.Context, f LogFilter) ([]models.LogEntry, error) {
	from, to, kind, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	if s.eventRepo == nil {
		return []models.LogEntry{}, nil
	}
	return s.eventRepo.List(ctx, from, to, kind)
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeLogKind(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range and kind.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	kind := normalizeLogKind(f.Type)
	switch models.LogKind(kind) {
	case "", models.LogInfo, models.LogError:
	default:
		return time.Time{}, time.Time{}, "", ErrInvalidLogKind
	}
	return from, to, kind, nil
}

// IsFilterError reports whether err came from history filter validation.
func IsFilterError(err error) bool {
	return errors.Is(err, errInvalidTimeRange) || errors.Is(err, ErrInvalidLogKind)
}
