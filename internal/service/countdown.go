package service

import (
	"math"
	"sync"
	"time"

	"switchbot_panel/internal/models"
)

// Ticker is the ticking source of the countdown.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the TickerFunc backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// MaxCountdownMinutes is the largest count whose seconds fit in an int.
const MaxCountdownMinutes = math.MaxInt / 60

type tickResult int

const (
	tickContinue tickResult = iota
	tickStale
	tickExpired
)

// Countdown counts down whole minutes one tick at a time and signals expiry
// once per Start. States: idle, running, and the one-shot expiry back to idle.
type Countdown struct {
	mu        sync.Mutex
	running   bool
	remaining int
	gen       uint64 // bumped on every start, cancel and expiry
	stop      chan struct{}

	interval  time.Duration
	newTicker TickerFunc
	onExpire  func()
	observers []func(models.CountdownState)
}

// NewCountdown returns an idle countdown ticking every interval. A nil
// newTicker uses NewTimeTicker.
func NewCountdown(interval time.Duration, newTicker TickerFunc) *Countdown {
	if interval <= 0 {
		interval = defaultTickInterval
	}
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	return &Countdown{interval: interval, newTicker: newTicker}
}

// OnExpire sets the single expiry subscriber. It runs on the ticking
// goroutine after the ticker has been stopped.
func (c *Countdown) OnExpire(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpire = fn
}

// Observe registers fn for every state change (start, tick, cancel, expiry).
func (c *Countdown) Observe(fn func(models.CountdownState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Start begins a countdown of minutes*60 ticks. minutes must be in
// 1..MaxCountdownMinutes.
func (c *Countdown) Start(minutes int) error {
	if minutes <= 0 || minutes > MaxCountdownMinutes {
		return ErrInvalidMinutes
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrCountdownRunning
	}
	c.running = true
	c.remaining = minutes * 60
	c.gen++
	gen := c.gen
	stop := make(chan struct{})
	c.stop = stop
	t := c.newTicker(c.interval)
	st, obs := c.snapshotLocked(), c.observers
	c.mu.Unlock()

	notify(obs, st)
	go c.run(gen, t, stop)
	return nil
}

// Cancel returns to idle without expiry. It reports whether a countdown was
// running; cancelling while idle is a no-op.
func (c *Countdown) Cancel() bool {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return false
	}
	c.running = false
	c.remaining = 0
	c.gen++
	close(c.stop)
	c.stop = nil
	st, obs := c.snapshotLocked(), c.observers
	c.mu.Unlock()

	notify(obs, st)
	return true
}

func (c *Countdown) State() models.CountdownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Countdown) snapshotLocked() models.CountdownState {
	if !c.running {
		return models.CountdownState{}
	}
	r := c.remaining
	return models.CountdownState{Running: true, RemainingSeconds: &r}
}

func (c *Countdown) run(gen uint64, t Ticker, stop <-chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			switch c.tick(gen) {
			case tickStale:
				return
			case tickExpired:
				t.Stop()
				c.expire()
				return
			}
		}
	}
}

// tick applies one decrement for the countdown started as gen.
func (c *Countdown) tick(gen uint64) tickResult {
	c.mu.Lock()
	if !c.running || c.gen != gen {
		c.mu.Unlock()
		return tickStale
	}

	c.remaining--
	if c.remaining > 0 {
		st, obs := c.snapshotLocked(), c.observers
		c.mu.Unlock()
		notify(obs, st)
		return tickContinue
	}

	c.remaining = 0
	c.running = false
	c.gen++
	c.stop = nil
	st, obs := c.snapshotLocked(), c.observers
	c.mu.Unlock()

	notify(obs, st)
	return tickExpired
}

func (c *Countdown) expire() {
	c.mu.Lock()
	fn := c.onExpire
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func notify(obs []func(models.CountdownState), st models.CountdownState) {
	for _, fn := range obs {
		fn(st)
	}
}
