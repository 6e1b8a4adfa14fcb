package service

import (
	"context"
	"fmt"
	"strings"

	"switchbot_panel/internal/models"
	"switchbot_panel/internal/repository"
)

const (
	DefaultPowerCommand = "turnOff"
	powerCommandPrefix  = "power_cmd:"
)

func powerCommandKey(deviceID string) string {
	return powerCommandPrefix + deviceID
}

// isReservedCommand reports whether a free-form command would be sent as an
// aircon composite by the backend.
func isReservedCommand(cmd string) bool {
	return strings.HasPrefix(cmd, models.AirconCommandPrefix)
}

// PreferenceService stores per-device power-off command overrides.
// Reads always go to the store so the latest edit is seen.
type PreferenceService struct {
	prefs  repository.PreferenceRepo
	events *EventLogService
}

func NewPreferenceService(prefs repository.PreferenceRepo, events *EventLogService) *PreferenceService {
	return &PreferenceService{prefs: prefs, events: events}
}

// Command returns the override for deviceID, or DefaultPowerCommand.
func (s *PreferenceService) Command(ctx context.Context, deviceID string) (string, error) {
	v, ok, err := s.prefs.Read(ctx, powerCommandKey(deviceID))
	if err != nil {
		return "", err
	}
	if v = strings.TrimSpace(v); !ok || v == "" {
		return DefaultPowerCommand, nil
	}
	return v, nil
}

// Set applies an edit. A nil raw means the edit was cancelled and nothing
// changes. A blank value removes the override.
func (s *PreferenceService) Set(ctx context.Context, deviceID, name string, raw *string) error {
	if raw == nil {
		return nil
	}
	if name == "" {
		name = deviceID
	}

	v := strings.TrimSpace(*raw)
	if v == "" {
		if err := s.prefs.Delete(ctx, powerCommandKey(deviceID)); err != nil {
			return err
		}
		s.events.Info(ctx, fmt.Sprintf("%s: power-off command reset to default (%s)", name, DefaultPowerCommand))
		return nil
	}

	if isReservedCommand(v) {
		return ErrReservedCommand
	}
	if err := s.prefs.Write(ctx, powerCommandKey(deviceID), v); err != nil {
		return err
	}
	s.events.Info(ctx, fmt.Sprintf("%s: power-off command set to %q", name, v))
	return nil
}
