package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"switchbot_panel/internal/models"
)

// memPrefs is an in-memory PreferenceRepo.
type memPrefs struct {
	mu      sync.Mutex
	data    map[string]string
	readErr error
	reads   int
}

func newMemPrefs() *memPrefs { return &memPrefs{data: map[string]string{}} }

func (m *memPrefs) Read(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.readErr != nil {
		return "", false, m.readErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memPrefs) Write(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memPrefs) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// fakeEventRepo records appended entries and answers List with canned data.
type fakeEventRepo struct {
	mu        sync.Mutex
	appended  []models.LogEntry
	appendErr error

	gotFrom time.Time
	gotTo   time.Time
	gotType string
	events  []models.LogEntry
	listErr error
	calls   int
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, e)
	return f.appendErr
}

func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.LogEntry, error) {
	f.calls++
	f.gotFrom, f.gotTo, f.gotType = from, to, typ
	return f.events, f.listErr
}

type fakeRunRepo struct {
	mu    sync.Mutex
	saved []models.ShutdownRun
	err   error
}

func (f *fakeRunRepo) Save(ctx context.Context, run models.ShutdownRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, run)
	return f.err
}

func (f *fakeRunRepo) Load(ctx context.Context) (models.ShutdownRun, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return models.ShutdownRun{}, false, f.err
	}
	return f.saved[len(f.saved)-1], true, f.err
}

type dispatchCall struct {
	ID, Command string
	HasDeadline bool
}

// fakeBackend records dispatches. failures maps device id to an error.
type fakeBackend struct {
	mu       sync.Mutex
	catalog  models.BackendCatalog
	fetchErr error
	failures map[string]error
	block    map[string]bool // wait for ctx.Done on these ids
	gate     chan struct{}   // when set, every dispatch waits for it to close
	calls    []dispatchCall

	status    models.DeviceStatus
	statusErr error
}

func (f *fakeBackend) FetchCatalog(ctx context.Context) (models.BackendCatalog, error) {
	return f.catalog, f.fetchErr
}

func (f *fakeBackend) Dispatch(ctx context.Context, id, cmd string) error {
	_, hasDeadline := ctx.Deadline()
	f.mu.Lock()
	f.calls = append(f.calls, dispatchCall{ID: id, Command: cmd, HasDeadline: hasDeadline})
	err := f.failures[id]
	block := f.block[id]
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (f *fakeBackend) Status(ctx context.Context, id string) (models.DeviceStatus, error) {
	st := f.status
	st.ID = id
	return st, f.statusErr
}

func (f *fakeBackend) dispatched() []dispatchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]dispatchCall, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakePower struct {
	mu        sync.Mutex
	sleeps    int
	shutdowns int
	sleepMsg  string
	err       error
}

func (p *fakePower) Sleep(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sleeps++
	return p.sleepMsg, p.err
}

func (p *fakePower) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shutdowns++
	return p.err
}

func (p *fakePower) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sleeps + p.shutdowns
}

// fakeTicker only fires when the test sends on ch.
type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

type tickerFactory struct {
	mu   sync.Mutex
	made []*fakeTicker
}

func (tf *tickerFactory) New(d time.Duration) Ticker {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	tf.made = append(tf.made, t)
	return t
}

func (tf *tickerFactory) count() int {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return len(tf.made)
}

func (tf *tickerFactory) last() *fakeTicker {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.made[len(tf.made)-1]
}

var errBackend = errors.New("backend: 190 device internal error")

func messages(entries []models.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}
