package service

import (
	"context"

	"switchbot_panel/internal/logger"
	"switchbot_panel/internal/models"
	"switchbot_panel/internal/repository"
)

// Catalog exposes the merged device list. Refresh empties it on a failed
// fetch; Sync keeps the last good list.
type Catalog interface {
	Refresh(ctx context.Context) ([]models.Device, error)
	Sync(ctx context.Context) ([]models.Device, error)
	Devices() []models.Device
	Find(id string) (models.Device, bool)
}

// Selection is the set of devices included in the shutdown sequence.
type Selection interface {
	Toggle(id string) bool
	Set(id string, selected bool)
	Selected(id string) bool
	Snapshot() map[string]bool
	Clear()
}

// Preferences holds per-device power-off command overrides.
type Preferences interface {
	Command(ctx context.Context, deviceID string) (string, error)
	Set(ctx context.Context, deviceID, name string, raw *string) error
}

// Aircon holds per-device HVAC settings and encodes them into one command.
type Aircon interface {
	Setting(id string) models.AirconSetting
	AdjustTemperature(id string, delta int) models.AirconSetting
	SetMode(id string, mode models.AirconMode) (models.AirconSetting, error)
	SetFanSpeed(id string, speed models.FanSpeed) (models.AirconSetting, error)
	TogglePower(id string) models.AirconSetting
	Encode(id string) string
	Send(ctx context.Context, id, name string) (string, error)
}

// Timer is the single pre-sleep countdown.
type Timer interface {
	Start(ctx context.Context, minutes int, action *models.PowerAction) error
	Cancel(ctx context.Context) bool
	State() models.CountdownState
	Observe(fn func(models.CountdownState))
}

// EventLog exposes the session log and its persisted history.
type EventLog interface {
	Entries() []models.LogEntry
	Since(seq int64) []models.LogEntry
	LastSeq() int64
	History(ctx context.Context, f LogFilter) ([]models.LogEntry, error)
}

// Control covers direct device commands and machine power actions.
type Control interface {
	SendCommand(ctx context.Context, deviceID, command string) error
	Status(ctx context.Context, deviceID string) (models.DeviceStatus, error)
	TurnOnFirstLight(ctx context.Context) (models.Device, bool, error)
	PowerAction() models.PowerAction
	SetPowerAction(ctx context.Context, raw string) (models.PowerAction, error)
	PowerNow(ctx context.Context, raw string) (models.ShutdownRun, error)
	LastRun(ctx context.Context) (models.ShutdownRun, bool, error)
}

type Service struct {
	Catalog     Catalog
	Selection   Selection
	Preferences Preferences
	Aircon      Aircon
	Timer       Timer
	EventLog    EventLog
	Control     Control

	// Events is the concrete log, for sinks.
	Events       *EventLogService
	Orchestrator *Orchestrator
}

// NewService wires the panel. The countdown expiry is bound to the
// orchestrator here.
func NewService(
	repos *repository.Repository,
	backend DeviceBackend,
	power PowerController,
	opts Options,
	log *logger.Logger,
) *Service {
	opts = opts.withDefaults()

	events := NewEventLogService(repos.Events, log)
	catalog := NewCatalogService(backend, events)
	selection := NewSelectionService()
	prefs := NewPreferenceService(repos.Preferences, events)
	action := newPowerActionSetting(opts.DefaultAction)

	engine := NewCountdown(opts.TickInterval, opts.NewTicker)
	orch := NewOrchestrator(catalog, selection, prefs, backend, power, action, events, repos.Runs, opts, log)
	engine.OnExpire(func() { orch.Run(context.Background()) })

	return &Service{
		Catalog:      catalog,
		Selection:    selection,
		Preferences:  prefs,
		Aircon:       NewAirconService(backend, events),
		Timer:        NewCountdownService(engine, action, events),
		EventLog:     events,
		Control:      NewDeviceControlService(catalog, backend, power, action, events, repos.Runs),
		Events:       events,
		Orchestrator: orch,
	}
}
