package models

import "time"

// LogKind is either info or error.
type LogKind string

const (
	LogInfo  LogKind = "info"
	LogError LogKind = "error"
)

// LogEntry is a single line of the session log.
type LogEntry struct {
	Seq       int64     `json:"seq"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Kind      LogKind   `json:"kind"`
	Metadata  any       `json:"metadata,omitempty"`
}
