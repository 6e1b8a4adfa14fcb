package handlers

import (
	"context"
	"time"

	"switchbot_panel/internal/models"
	"switchbot_panel/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockCatalog struct {
	devices    []models.Device
	refreshErr error
	refreshed  int
}

func (m *mockCatalog) Refresh(ctx context.Context) ([]models.Device, error) {
	m.refreshed++
	if m.refreshErr != nil {
		m.devices = nil
		return nil, m.refreshErr
	}
	return m.devices, nil
}

func (m *mockCatalog) Sync(ctx context.Context) ([]models.Device, error) {
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.devices, nil
}

func (m *mockCatalog) Devices() []models.Device { return m.devices }

func (m *mockCatalog) Find(id string) (models.Device, bool) {
	for _, d := range m.devices {
		if d.ID == id {
			return d, true
		}
	}
	return models.Device{}, false
}

type mockPreferences struct {
	commands map[string]string
	err      error
	lastName string
	setCalls int
}

func (m *mockPreferences) Command(ctx context.Context, id string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if c, ok := m.commands[id]; ok {
		return c, nil
	}
	return service.DefaultPowerCommand, nil
}

func (m *mockPreferences) Set(ctx context.Context, id, name string, raw *string) error {
	m.setCalls++
	m.lastName = name
	if m.err != nil {
		return m.err
	}
	if raw == nil {
		return nil
	}
	if *raw == "" {
		delete(m.commands, id)
		return nil
	}
	m.commands[id] = *raw
	return nil
}

type mockTimer struct {
	state       models.CountdownState
	startErr    error
	lastMinutes int
	lastAction  *models.PowerAction
	cancelled   bool
}

func (m *mockTimer) Start(ctx context.Context, minutes int, action *models.PowerAction) error {
	m.lastMinutes = minutes
	m.lastAction = action
	if m.startErr != nil {
		return m.startErr
	}
	r := minutes * 60
	m.state = models.CountdownState{Running: true, RemainingSeconds: &r}
	return nil
}

func (m *mockTimer) Cancel(ctx context.Context) bool {
	was := m.state.Running
	m.state = models.CountdownState{}
	m.cancelled = was
	return was
}

func (m *mockTimer) State() models.CountdownState           { return m.state }
func (m *mockTimer) Observe(fn func(models.CountdownState)) {}

type mockEventLog struct {
	entries  []models.LogEntry // append order
	history  []models.LogEntry
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) Entries() []models.LogEntry {
	out := make([]models.LogEntry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		out = append(out, m.entries[i])
	}
	return out
}

func (m *mockEventLog) Since(seq int64) []models.LogEntry {
	var out []models.LogEntry
	for _, e := range m.entries {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}

func (m *mockEventLog) LastSeq() int64 {
	if len(m.entries) == 0 {
		return 0
	}
	return m.entries[len(m.entries)-1].Seq
}

func (m *mockEventLog) History(ctx context.Context, f service.LogFilter) ([]models.LogEntry, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.history, m.err
}

type mockControl struct {
	action    models.PowerAction
	sendErr   error
	sent      []string
	powerRuns []string
	lastRun   *models.ShutdownRun
	runErr    error

	status    models.DeviceStatus
	statusErr error
	light     *models.Device
}

func (m *mockControl) SendCommand(ctx context.Context, id, command string) error {
	m.sent = append(m.sent, id+":"+command)
	return m.sendErr
}

func (m *mockControl) Status(ctx context.Context, id string) (models.DeviceStatus, error) {
	if m.statusErr != nil {
		return models.DeviceStatus{}, m.statusErr
	}
	st := m.status
	st.ID = id
	return st, nil
}

func (m *mockControl) TurnOnFirstLight(ctx context.Context) (models.Device, bool, error) {
	if m.light == nil {
		return models.Device{}, false, nil
	}
	m.sent = append(m.sent, m.light.ID+":turnOn")
	return *m.light, true, m.sendErr
}

func (m *mockControl) PowerAction() models.PowerAction {
	if m.action == "" {
		return models.PowerActionShutdown
	}
	return m.action
}

func (m *mockControl) SetPowerAction(ctx context.Context, raw string) (models.PowerAction, error) {
	a, err := service.ParsePowerAction(raw)
	if err != nil {
		return "", err
	}
	m.action = a
	return a, nil
}

func (m *mockControl) PowerNow(ctx context.Context, raw string) (models.ShutdownRun, error) {
	a, err := service.ParsePowerAction(raw)
	if err != nil {
		return models.ShutdownRun{}, err
	}
	m.powerRuns = append(m.powerRuns, string(a))
	return models.ShutdownRun{Action: a, PowerMessage: "ok"}, nil
}

func (m *mockControl) LastRun(ctx context.Context) (models.ShutdownRun, bool, error) {
	if m.lastRun == nil {
		return models.ShutdownRun{}, false, m.runErr
	}
	return *m.lastRun, true, m.runErr
}

// mockBackend backs the real aircon service in tests.
type mockBackend struct {
	err  error
	sent []string
}

func (m *mockBackend) FetchCatalog(ctx context.Context) (models.BackendCatalog, error) {
	return models.BackendCatalog{}, nil
}

func (m *mockBackend) Status(ctx context.Context, id string) (models.DeviceStatus, error) {
	return models.DeviceStatus{ID: id}, m.err
}

func (m *mockBackend) Dispatch(ctx context.Context, id, cmd string) error {
	m.sent = append(m.sent, id+":"+cmd)
	return m.err
}

// ---- Shared Test Helpers ----

var testDevices = []models.Device{
	{ID: "H1", Name: "Hub", Kind: models.KindPhysical, TypeTag: "Hub Mini"},
	{ID: "L1", Name: "Lamp", Kind: models.KindInfrared, TypeTag: "Light"},
	{ID: "AC1", Name: "Bedroom AC", Kind: models.KindInfrared, TypeTag: "Air Conditioner"},
}

type testPanel struct {
	catalog  *mockCatalog
	prefs    *mockPreferences
	timer    *mockTimer
	logs     *mockEventLog
	control  *mockControl
	backend  *mockBackend
	services *service.Service
}

func newTestPanel() *testPanel {
	p := &testPanel{
		catalog: &mockCatalog{devices: append([]models.Device(nil), testDevices...)},
		prefs:   &mockPreferences{commands: map[string]string{}},
		timer:   &mockTimer{},
		logs:    &mockEventLog{},
		control: &mockControl{},
		backend: &mockBackend{},
	}
	p.services = &service.Service{
		Catalog:     p.catalog,
		Selection:   service.NewSelectionService(),
		Preferences: p.prefs,
		Aircon:      service.NewAirconService(p.backend, service.NewEventLogService(nil, nil)),
		Timer:       p.timer,
		EventLog:    p.logs,
		Control:     p.control,
	}
	return p
}

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
