package service

import (
	"time"

	"switchbot_panel/internal/models"
)

// LogFilter selects history entries by time range and kind.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "info", "error"
}

// Options tunes the countdown and the shutdown sequence.
type Options struct {
	TickInterval    time.Duration
	SettleDelay     time.Duration
	DispatchTimeout time.Duration // zero disables the per-dispatch bound
	DefaultAction   models.PowerAction
	NewTicker       TickerFunc // nil uses NewTimeTicker
}

const (
	defaultTickInterval = time.Second
	defaultSettleDelay  = 800 * time.Millisecond
)

func (o Options) withDefaults() Options {
	if o.TickInterval <= 0 {
		o.TickInterval = defaultTickInterval
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = defaultSettleDelay
	}
	if o.DefaultAction == "" {
		o.DefaultAction = models.PowerActionShutdown
	}
	return o
}
