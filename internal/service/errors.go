package service

import "errors"

// Validation errors. Handlers map them to 4xx responses.
var (
	ErrInvalidMinutes     = errors.New("minutes must be a positive integer within range")
	ErrCountdownRunning   = errors.New("countdown is already running")
	ErrUnknownMode        = errors.New("unknown aircon mode: must be Auto, Cool, Dry, Fan or Heat")
	ErrUnknownFanSpeed    = errors.New("unknown fan speed: must be Auto, Low, Medium or High")
	ErrInvalidPowerAction = errors.New("invalid power action: must be shutdown or sleep")
	ErrDeviceNotFound     = errors.New("device not found")
	ErrEmptyCommand       = errors.New("command must not be empty")
	ErrReservedCommand    = errors.New("commands starting with setAll: are reserved for the aircon encoder")
	ErrNoStatus           = errors.New("infrared remotes do not report status")
	ErrInvalidLogKind     = errors.New("invalid log type: must be info or error")

	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)
