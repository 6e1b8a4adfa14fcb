package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"switchbot_panel/internal/logger"
	"switchbot_panel/internal/models"
	"switchbot_panel/internal/repository"
)

// PowerController is the host sleep/shutdown collaborator.
type PowerController interface {
	Sleep(ctx context.Context) (string, error)
	Shutdown(ctx context.Context) error
}

// commandSource resolves the power-off command of a device.
type commandSource interface {
	Command(ctx context.Context, deviceID string) (string, error)
}

// Orchestrator runs the pre-sleep sequence once the countdown expires.
type Orchestrator struct {
	catalog   Catalog
	selection Selection
	commands  commandSource
	backend   DeviceBackend
	power     PowerController
	action    *powerActionSetting
	events    *EventLogService
	runs      repository.RunRepo
	log       *logger.Logger

	settleDelay     time.Duration
	dispatchTimeout time.Duration

	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time

	runMu  sync.Mutex
	active int
	idle   chan struct{} // closed when active drops to zero
}

func NewOrchestrator(
	catalog Catalog,
	selection Selection,
	commands commandSource,
	backend DeviceBackend,
	power PowerController,
	action *powerActionSetting,
	events *EventLogService,
	runs repository.RunRepo,
	opts Options,
	log *logger.Logger,
) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		catalog:         catalog,
		selection:       selection,
		commands:        commands,
		backend:         backend,
		power:           power,
		action:          action,
		events:          events,
		runs:            runs,
		log:             log,
		settleDelay:     opts.SettleDelay,
		dispatchTimeout: opts.DispatchTimeout,
		sleep:           sleepCtx,
		now:             time.Now,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run processes every selected device in catalog order, waits the settle
// delay and issues the terminal power action. A failing device never stops
// the sequence. The run ignores cancellation of ctx.
func (o *Orchestrator) Run(ctx context.Context) models.ShutdownRun {
	o.begin()
	defer o.end()
	ctx = context.WithoutCancel(ctx)

	run := models.ShutdownRun{
		StartedAt: o.now().UTC(),
		Action:    o.action.Get(),
		Outcomes:  []models.DeviceOutcome{},
	}
	o.events.Info(ctx, "countdown expired: running shutdown sequence")

	selected := o.selection.Snapshot()
	for _, d := range o.catalog.Devices() {
		if !selected[d.ID] {
			continue
		}
		run.Outcomes = append(run.Outcomes, o.shutdownDevice(ctx, d))
	}

	o.sleep(ctx, o.settleDelay)

	run.PowerMessage, run.PowerError = performPowerAction(ctx, o.power, o.events, run.Action)
	run.FinishedAt = o.now().UTC()

	if o.runs != nil {
		if err := o.runs.Save(ctx, run); err != nil {
			o.log.Errorw("shutdown_run_save_failed", "err", err)
		}
	}
	o.log.Infow("shutdown_run_finished",
		"action", run.Action,
		"devices", len(run.Outcomes),
		"power_error", run.PowerError,
	)
	return run
}

// Wait blocks until no run is in progress or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context) error {
	o.runMu.Lock()
	if o.active == 0 {
		o.runMu.Unlock()
		return nil
	}
	idle := o.idle
	o.runMu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) begin() {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	if o.active == 0 {
		o.idle = make(chan struct{})
	}
	o.active++
}

func (o *Orchestrator) end() {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	o.active--
	if o.active == 0 {
		close(o.idle)
	}
}

func (o *Orchestrator) shutdownDevice(ctx context.Context, d models.Device) models.DeviceOutcome {
	out := models.DeviceOutcome{DeviceID: d.ID, Name: d.Name, Kind: d.Kind}

	if d.Kind != models.KindInfrared {
		out.Status = models.OutcomeSkipped
		o.events.Info(ctx, fmt.Sprintf("%s: not implemented", d.Name))
		return out
	}

	cmd, err := o.commands.Command(ctx, d.ID)
	if err != nil {
		out.Status = models.OutcomeFailed
		out.Error = err.Error()
		o.events.Error(ctx, fmt.Sprintf("%s: failed to read power-off command: %v", d.Name, err))
		return out
	}
	out.Command = cmd

	if err := o.dispatch(ctx, d.ID, cmd); err != nil {
		out.Status = models.OutcomeFailed
		out.Error = err.Error()
		o.events.Error(ctx, fmt.Sprintf("%s: failed to send %s: %v", d.Name, cmd, err))
		return out
	}

	out.Status = models.OutcomeOK
	o.events.Info(ctx, fmt.Sprintf("%s: sent %s", d.Name, cmd))
	return out
}

func (o *Orchestrator) dispatch(ctx context.Context, id, cmd string) error {
	if o.dispatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.dispatchTimeout)
		defer cancel()
	}
	return o.backend.Dispatch(ctx, id, cmd)
}

// performPowerAction logs the attempt, calls the collaborator once and logs
// the confirmation or the error. It returns them for the run record.
func performPowerAction(ctx context.Context, power PowerController, events *EventLogService, action models.PowerAction) (msg, errMsg string) {
	switch action {
	case models.PowerActionSleep:
		events.Info(ctx, "putting the machine to sleep")
		m, err := power.Sleep(ctx)
		if err != nil {
			events.Error(ctx, fmt.Sprintf("sleep failed: %v", err))
			return "", err.Error()
		}
		if m != "" {
			events.Info(ctx, m)
		}
		return m, ""
	default:
		events.Info(ctx, "shutting down the machine")
		if err := power.Shutdown(ctx); err != nil {
			events.Error(ctx, fmt.Sprintf("shutdown failed: %v", err))
			return "", err.Error()
		}
		return "", ""
	}
}
