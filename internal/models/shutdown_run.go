package models

import "time"

// PowerAction is the terminal machine action after the device sequence.
type PowerAction string

const (
	PowerActionShutdown PowerAction = "shutdown"
	PowerActionSleep    PowerAction = "sleep"
)

// OutcomeStatus of one device in a shutdown run.
type OutcomeStatus string

const (
	OutcomeOK      OutcomeStatus = "ok"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped" // physical devices, nothing dispatched
)

// DeviceOutcome records what happened to one selected device.
type DeviceOutcome struct {
	DeviceID string        `json:"device_id"`
	Name     string        `json:"name"`
	Kind     DeviceKind    `json:"kind"`
	Command  string        `json:"command,omitempty"`
	Status   OutcomeStatus `json:"status"`
	Error    string        `json:"error,omitempty"`
}

// ShutdownRun is the result of one expiry.
type ShutdownRun struct {
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
	Action       PowerAction     `json:"action"`
	Outcomes     []DeviceOutcome `json:"outcomes"`
	PowerMessage string          `json:"power_message,omitempty"`
	PowerError   string          `json:"power_error,omitempty"`
}
