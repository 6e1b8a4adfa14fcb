package service

import (
	"context"
	"errors"
	"testing"

	"switchbot_panel/internal/models"
)

func newControl(t *testing.T) (*DeviceControlService, *panel) {
	t.Helper()
	p := newPanel(t, Options{})
	return NewDeviceControlService(p.catalog, p.backend, p.power, p.action, p.events, p.runs), p
}

func TestControl_SendCommand(t *testing.T) {
	c, p := newControl(t)
	ctx := context.Background()

	if err := c.SendCommand(ctx, "L1", " volumeDown "); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	calls := p.backend.dispatched()
	if len(calls) != 1 || calls[0].Command != "volumeDown" {
		t.Fatalf("dispatched = %+v", calls)
	}

	if err := c.SendCommand(ctx, "L1", ""); !errors.Is(err, ErrEmptyCommand) {
		t.Fatalf("empty command err = %v", err)
	}
	if err := c.SendCommand(ctx, "L1", "setAll:30,2,1,on"); !errors.Is(err, ErrReservedCommand) {
		t.Fatalf("reserved command err = %v", err)
	}
	if n := len(p.backend.dispatched()); n != 1 {
		t.Fatalf("reserved command dispatched: %d calls", n)
	}
	if err := c.SendCommand(ctx, "missing", "turnOff"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("missing device err = %v", err)
	}
	if err := c.SendCommand(ctx, "H1", "turnOff"); !errors.Is(err, ErrNotInfrared) {
		t.Fatalf("physical device err = %v", err)
	}

	p.backend.failures = map[string]error{"L1": errBackend}
	if err := c.SendCommand(ctx, "L1", "turnOff"); !errors.Is(err, errBackend) {
		t.Fatalf("backend failure err = %v", err)
	}
	if p.events.Entries()[0].Kind != models.LogError {
		t.Fatalf("failure not logged: %+v", p.events.Entries()[0])
	}
}

func TestControl_PowerAction(t *testing.T) {
	c, _ := newControl(t)
	ctx := context.Background()

	if c.PowerAction() != models.PowerActionShutdown {
		t.Fatalf("default = %q", c.PowerAction())
	}
	if a, err := c.SetPowerAction(ctx, " SLEEP "); err != nil || a != models.PowerActionSleep {
		t.Fatalf("SetPowerAction = %q, %v", a, err)
	}
	if _, err := c.SetPowerAction(ctx, "reboot"); !errors.Is(err, ErrInvalidPowerAction) {
		t.Fatalf("err = %v", err)
	}
	if c.PowerAction() != models.PowerActionSleep {
		t.Fatal("invalid input changed the action")
	}
}

func TestControl_PowerNow(t *testing.T) {
	c, p := newControl(t)

	run, err := c.PowerNow(context.Background(), "sleep")
	if err != nil {
		t.Fatalf("PowerNow: %v", err)
	}
	if p.power.sleeps != 1 || run.PowerMessage != "machine put to sleep" {
		t.Fatalf("run = %+v, sleeps = %d", run, p.power.sleeps)
	}
	if _, err := c.PowerNow(context.Background(), ""); !errors.Is(err, ErrInvalidPowerAction) {
		t.Fatalf("err = %v", err)
	}
	if p.power.total() != 1 {
		t.Fatal("invalid action reached the collaborator")
	}
}

func TestControl_LastRun(t *testing.T) {
	c, p := newControl(t)
	ctx := context.Background()

	if _, ok, err := c.LastRun(ctx); ok || err != nil {
		t.Fatalf("LastRun before any run = %v, %v", ok, err)
	}
	p.orch.Run(ctx)
	run, ok, err := c.LastRun(ctx)
	if !ok || err != nil || run.Action != models.PowerActionShutdown {
		t.Fatalf("LastRun = %+v, %v, %v", run, ok, err)
	}
}

func TestControl_Status(t *testing.T) {
	c, p := newControl(t)
	ctx := context.Background()
	p.backend.status = models.DeviceStatus{Power: "on", Temperature: 22.5, Humidity: 41}

	st, err := c.Status(ctx, "H1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.ID != "H1" || st.Power != "on" || st.Temperature != 22.5 || st.Humidity != 41 {
		t.Fatalf("status = %+v", st)
	}

	if _, err := c.Status(ctx, "L1"); !errors.Is(err, ErrNoStatus) {
		t.Fatalf("infrared status err = %v", err)
	}
	if _, err := c.Status(ctx, "missing"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("missing device err = %v", err)
	}

	p.backend.statusErr = errBackend
	if _, err := c.Status(ctx, "H1"); !errors.Is(err, errBackend) {
		t.Fatalf("backend err = %v", err)
	}
	if e := p.events.Entries()[0]; e.Kind != models.LogError || e.Message != "Hub: failed to read status: "+errBackend.Error() {
		t.Fatalf("log = %+v", e)
	}
}

func TestControl_TurnOnFirstLight(t *testing.T) {
	c, p := newControl(t)
	ctx := context.Background()

	d, ok, err := c.TurnOnFirstLight(ctx)
	if err != nil || !ok || d.ID != "L1" {
		t.Fatalf("TurnOnFirstLight = %+v, %v, %v", d, ok, err)
	}
	calls := p.backend.dispatched()
	if len(calls) != 1 || calls[0].ID != "L1" || calls[0].Command != "turnOn" {
		t.Fatalf("dispatched = %+v", calls)
	}
	if msg := p.events.Entries()[0].Message; msg != "Lamp: sent turnOn" {
		t.Fatalf("log = %q", msg)
	}
}

func TestControl_TurnOnFirstLight_NoneInCatalog(t *testing.T) {
	c, p := newControl(t)
	ctx := context.Background()
	p.backend.catalog.InfraredRemotes = []models.BackendDevice{{ID: "TV", Name: "TV", TypeTag: "TV"}}
	if _, err := p.catalog.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	_, ok, err := c.TurnOnFirstLight(ctx)
	if err != nil || ok {
		t.Fatalf("ok = %v, err = %v", ok, err)
	}
	if len(p.backend.dispatched()) != 0 {
		t.Fatal("dispatched without a light")
	}
	if msg := p.events.Entries()[0].Message; msg != "no infrared light remote found" {
		t.Fatalf("log = %q", msg)
	}
}
