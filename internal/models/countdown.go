package models

// CountdownState is the observable state of the countdown.
// RemainingSeconds is nil iff Running is false.
type CountdownState struct {
	Running          bool `json:"running"`
	RemainingSeconds *int `json:"remaining_seconds"`
}
