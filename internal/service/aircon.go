package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"switchbot_panel/internal/models"
)

const (
	MinAirconTemp = 16
	MaxAirconTemp = 30
)

// DefaultAirconSetting is used for a device seen for the first time.
var DefaultAirconSetting = models.AirconSetting{
	Temperature: 26,
	Mode:        models.ModeAuto,
	FanSpeed:    models.FanAuto,
	Power:       models.PowerOn,
}

// AirconService keeps per-device HVAC settings in memory. Every mutator reads
// the current setting (or the default) and writes back only its own field.
type AirconService struct {
	mu       sync.Mutex
	settings map[string]models.AirconSetting

	backend DeviceBackend
	events  *EventLogService
}

func NewAirconService(backend DeviceBackend, events *EventLogService) *AirconService {
	return &AirconService{
		settings: make(map[string]models.AirconSetting),
		backend:  backend,
		events:   events,
	}
}

// get must be called with mu held.
func (s *AirconService) get(id string) models.AirconSetting {
	if st, ok := s.settings[id]; ok {
		return st
	}
	return DefaultAirconSetting
}

func (s *AirconService) update(id string, fn func(*models.AirconSetting)) models.AirconSetting {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(id)
	fn(&st)
	s.settings[id] = st
	return st
}

// Setting returns the current setting without storing the default.
func (s *AirconService) Setting(id string) models.AirconSetting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

// AdjustTemperature adds delta and clamps the result to the valid range.
func (s *AirconService) AdjustTemperature(id string, delta int) models.AirconSetting {
	// any larger step saturates anyway; bounding it keeps the sum from overflowing
	delta = min(max(delta, MinAirconTemp-MaxAirconTemp), MaxAirconTemp-MinAirconTemp)
	return s.update(id, func(st *models.AirconSetting) {
		st.Temperature = clampTemperature(st.Temperature + delta)
	})
}

func (s *AirconService) SetMode(id string, mode models.AirconMode) (models.AirconSetting, error) {
	if mode < models.ModeAuto || mode > models.ModeHeat {
		return models.AirconSetting{}, ErrUnknownMode
	}
	return s.update(id, func(st *models.AirconSetting) { st.Mode = mode }), nil
}

func (s *AirconService) SetFanSpeed(id string, speed models.FanSpeed) (models.AirconSetting, error) {
	if speed < models.FanAuto || speed > models.FanHigh {
		return models.AirconSetting{}, ErrUnknownFanSpeed
	}
	return s.update(id, func(st *models.AirconSetting) { st.FanSpeed = speed }), nil
}

func (s *AirconService) TogglePower(id string) models.AirconSetting {
	return s.update(id, func(st *models.AirconSetting) {
		if st.Power == models.PowerOn {
			st.Power = models.PowerOff
		} else {
			st.Power = models.PowerOn
		}
	})
}

// Encode returns the wire command for the device's current setting.
func (s *AirconService) Encode(id string) string {
	return EncodeSetting(s.Setting(id))
}

// Send encodes the current setting and dispatches it, logging the outcome.
func (s *AirconService) Send(ctx context.Context, id, name string) (string, error) {
	if name == "" {
		name = id
	}
	cmd := s.Encode(id)
	if err := s.backend.Dispatch(ctx, id, cmd); err != nil {
		s.events.Error(ctx, fmt.Sprintf("%s: failed to send aircon setting: %v", name, err))
		return cmd, err
	}
	s.events.Info(ctx, fmt.Sprintf("%s: aircon setting sent (%s)", name, cmd))
	return cmd, nil
}

// EncodeSetting builds "setAll:temperature,mode,fanSpeed,power" with mode and
// fan speed as their numeric values.
func EncodeSetting(st models.AirconSetting) string {
	return models.AirconCommandPrefix + strings.Join([]string{
		strconv.Itoa(st.Temperature),
		strconv.Itoa(int(st.Mode)),
		strconv.Itoa(int(st.FanSpeed)),
		string(st.Power),
	}, ",")
}

func clampTemperature(t int) int {
	return min(max(t, MinAirconTemp), MaxAirconTemp)
}

// ParseMode accepts a mode name in any case.
func ParseMode(s string) (models.AirconMode, error) {
	for m := models.ModeAuto; m <= models.ModeHeat; m++ {
		if strings.EqualFold(strings.TrimSpace(s), m.String()) {
			return m, nil
		}
	}
	return 0, ErrUnknownMode
}

// ParseFanSpeed accepts a fan speed name in any case.
func ParseFanSpeed(s string) (models.FanSpeed, error) {
	for f := models.FanAuto; f <= models.FanHigh; f++ {
		if strings.EqualFold(strings.TrimSpace(s), f.String()) {
			return f, nil
		}
	}
	return 0, ErrUnknownFanSpeed
}
