package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"switchbot_panel/internal/models"
)

func newAircon() (*AirconService, *fakeBackend, *EventLogService) {
	b := &fakeBackend{}
	ev := NewEventLogService(nil, nil)
	return NewAirconService(b, ev), b, ev
}

func TestAircon_DefaultSetting(t *testing.T) {
	a, _, _ := newAircon()
	got := a.Setting("AC1")
	if got != DefaultAirconSetting {
		t.Fatalf("Setting() = %+v", got)
	}
	if got := a.Encode("AC1"); got != "setAll:26,1,1,on" {
		t.Fatalf("Encode() = %q", got)
	}
}

func TestAircon_AdjustTemperatureClamps(t *testing.T) {
	tests := []struct {
		name  string
		start int
		delta int
		want  int
	}{
		{"lower bound", 18, -5, 16},
		{"upper bound", 26, 5, 30},
		{"within range", 26, -2, 24},
		{"far below", 16, -100, 16},
		{"max int saturates high", 26, math.MaxInt, 30},
		{"min int saturates low", 26, math.MinInt, 16},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, _, _ := newAircon()
			a.AdjustTemperature("AC1", tc.start-26)
			got := a.AdjustTemperature("AC1", tc.delta)
			if got.Temperature != tc.want {
				t.Fatalf("temperature = %d, want %d", got.Temperature, tc.want)
			}
		})
	}
}

func TestAircon_MutatorsTouchOnlyTheirField(t *testing.T) {
	a, _, _ := newAircon()

	a.AdjustTemperature("AC1", -4)
	if _, err := a.SetFanSpeed("AC1", models.FanHigh); err != nil {
		t.Fatal(err)
	}
	a.TogglePower("AC1")
	if _, err := a.SetMode("AC1", models.ModeHeat); err != nil {
		t.Fatal(err)
	}

	want := models.AirconSetting{Temperature: 22, Mode: models.ModeHeat, FanSpeed: models.FanHigh, Power: models.PowerOff}
	if got := a.Setting("AC1"); got != want {
		t.Fatalf("Setting() = %+v, want %+v", got, want)
	}
	if got := a.Setting("AC2"); got != DefaultAirconSetting {
		t.Fatalf("other device affected: %+v", got)
	}
	if got := a.TogglePower("AC1"); got.Power != models.PowerOn {
		t.Fatalf("toggle back = %+v", got)
	}
}

func TestAircon_ScenarioC(t *testing.T) {
	a, _, _ := newAircon()

	if _, err := a.SetMode("AC1", models.ModeCool); err != nil {
		t.Fatal(err)
	}
	a.AdjustTemperature("AC1", 5)

	if got := a.Encode("AC1"); got != "setAll:30,2,1,on" {
		t.Fatalf("Encode() = %q", got)
	}
}

func TestEncodeSetting_Deterministic(t *testing.T) {
	st := models.AirconSetting{Temperature: 21, Mode: models.ModeDry, FanSpeed: models.FanMedium, Power: models.PowerOff}
	first := EncodeSetting(st)
	second := EncodeSetting(st)
	if first != second || first != "setAll:21,3,3,off" {
		t.Fatalf("EncodeSetting = %q / %q", first, second)
	}
}

func TestAircon_InvalidEnums(t *testing.T) {
	a, _, _ := newAircon()
	if _, err := a.SetMode("AC1", models.AirconMode(9)); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("SetMode err = %v", err)
	}
	if _, err := a.SetFanSpeed("AC1", models.FanSpeed(0)); !errors.Is(err, ErrUnknownFanSpeed) {
		t.Fatalf("SetFanSpeed err = %v", err)
	}
	if got := a.Setting("AC1"); got != DefaultAirconSetting {
		t.Fatalf("rejected edit changed setting: %+v", got)
	}
}

func TestParseModeAndFan(t *testing.T) {
	if m, err := ParseMode(" cool "); err != nil || m != models.ModeCool {
		t.Fatalf("ParseMode = %v, %v", m, err)
	}
	if _, err := ParseMode("turbo"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("ParseMode(turbo) err = %v", err)
	}
	if f, err := ParseFanSpeed("HIGH"); err != nil || f != models.FanHigh {
		t.Fatalf("ParseFanSpeed = %v, %v", f, err)
	}
	if _, err := ParseFanSpeed(""); !errors.Is(err, ErrUnknownFanSpeed) {
		t.Fatalf("ParseFanSpeed('') err = %v", err)
	}
}

func TestAircon_Send(t *testing.T) {
	a, b, ev := newAircon()
	a.TogglePower("AC1")

	cmd, err := a.Send(context.Background(), "AC1", "Bedroom AC")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	calls := b.dispatched()
	if len(calls) != 1 || calls[0].Command != cmd || cmd != "setAll:26,1,1,off" {
		t.Fatalf("dispatched %+v (cmd %q)", calls, cmd)
	}
	if ev.Entries()[0].Kind != models.LogInfo {
		t.Fatalf("log = %+v", ev.Entries())
	}

	b.failures = map[string]error{"AC1": errBackend}
	if _, err := a.Send(context.Background(), "AC1", ""); !errors.Is(err, errBackend) {
		t.Fatalf("Send err = %v", err)
	}
	if ev.Entries()[0].Kind != models.LogError {
		t.Fatalf("log = %+v", ev.Entries())
	}
}
