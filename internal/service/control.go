package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"switchbot_panel/internal/models"
	"switchbot_panel/internal/repository"
)

var ErrNotInfrared = errors.New("device is not an infrared remote")

const (
	lightTypeTag  = "Light"
	turnOnCommand = "turnOn"
)

// DeviceControlService covers direct actions outside the countdown: ad hoc
// IR commands, the terminal action choice and immediate power actions.
type DeviceControlService struct {
	catalog Catalog
	backend DeviceBackend
	power   PowerController
	action  *powerActionSetting
	events  *EventLogService
	runs    repository.RunRepo
}

func NewDeviceControlService(
	catalog Catalog,
	backend DeviceBackend,
	power PowerController,
	action *powerActionSetting,
	events *EventLogService,
	runs repository.RunRepo,
) *DeviceControlService {
	return &DeviceControlService{
		catalog: catalog,
		backend: backend,
		power:   power,
		action:  action,
		events:  events,
		runs:    runs,
	}
}

// SendCommand dispatches command to an infrared device from the catalog.
func (s *DeviceControlService) SendCommand(ctx context.Context, deviceID, command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return ErrEmptyCommand
	}
	if isReservedCommand(command) {
		return ErrReservedCommand
	}
	d, ok := s.catalog.Find(deviceID)
	if !ok {
		return ErrDeviceNotFound
	}
	if d.Kind != models.KindInfrared {
		s.events.Info(ctx, fmt.Sprintf("%s: not implemented", d.Name))
		return ErrNotInfrared
	}

	if err := s.backend.Dispatch(ctx, d.ID, command); err != nil {
		s.events.Error(ctx, fmt.Sprintf("%s: failed to send %s: %v", d.Name, command, err))
		return err
	}
	s.events.Info(ctx, fmt.Sprintf("%s: sent %s", d.Name, command))
	return nil
}

// Status reads the live state of a physical device.
func (s *DeviceControlService) Status(ctx context.Context, deviceID string) (models.DeviceStatus, error) {
	d, ok := s.catalog.Find(deviceID)
	if !ok {
		return models.DeviceStatus{}, ErrDeviceNotFound
	}
	if d.Kind != models.KindPhysical {
		return models.DeviceStatus{}, ErrNoStatus
	}
	st, err := s.backend.Status(ctx, d.ID)
	if err != nil {
		s.events.Error(ctx, fmt.Sprintf("%s: failed to read status: %v", d.Name, err))
		return models.DeviceStatus{}, err
	}
	return st, nil
}

// TurnOnFirstLight sends turnOn to the first infrared remote whose type
// mentions Light. ok is false when the catalog has none.
func (s *DeviceControlService) TurnOnFirstLight(ctx context.Context) (d models.Device, ok bool, err error) {
	for _, dev := range s.catalog.Devices() {
		if dev.Kind == models.KindInfrared && strings.Contains(dev.TypeTag, lightTypeTag) {
			d, ok = dev, true
			break
		}
	}
	if !ok {
		s.events.Info(ctx, "no infrared light remote found")
		return models.Device{}, false, nil
	}
	return d, true, s.SendCommand(ctx, d.ID, turnOnCommand)
}

func (s *DeviceControlService) PowerAction() models.PowerAction {
	return s.action.Get()
}

// SetPowerAction chooses the terminal action for the next expiry.
func (s *DeviceControlService) SetPowerAction(ctx context.Context, raw string) (models.PowerAction, error) {
	a, err := ParsePowerAction(raw)
	if err != nil {
		return "", err
	}
	s.action.Set(a)
	s.events.Info(ctx, fmt.Sprintf("power action set to %s", a))
	return a, nil
}

// PowerNow runs a terminal action immediately. The collaborator's failure is
// logged and returned in the result, not as an error.
func (s *DeviceControlService) PowerNow(ctx context.Context, raw string) (models.ShutdownRun, error) {
	a, err := ParsePowerAction(raw)
	if err != nil {
		return models.ShutdownRun{}, err
	}
	run := models.ShutdownRun{StartedAt: time.Now().UTC(), Action: a, Outcomes: []models.DeviceOutcome{}}
	run.PowerMessage, run.PowerError = performPowerAction(context.WithoutCancel(ctx), s.power, s.events, a)
	run.FinishedAt = time.Now().UTC()
	return run, nil
}

// LastRun returns the most recent shutdown run, if any.
func (s *DeviceControlService) LastRun(ctx context.Context) (models.ShutdownRun, bool, error) {
	if s.runs == nil {
		return models.ShutdownRun{}, false, nil
	}
	return s.runs.Load(ctx)
}
