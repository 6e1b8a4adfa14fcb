// Package power issues host sleep and shutdown requests.
package power

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"switchbot_panel/internal/logger"
)

var ErrUnsupported = fmt.Errorf("power actions are not supported on %s", runtime.GOOS)

// step is one external program invocation.
type step struct {
	name string
	args []string
	// best-effort steps never fail the action
	optional bool
}

type runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s: %w: %s", name, err, out)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Host runs the platform's power commands.
type Host struct {
	run      runner
	sleep    []step
	shutdown []step
}

func NewHost() *Host {
	return &Host{run: execRunner, sleep: sleepSteps(), shutdown: shutdownSteps()}
}

// Sleep suspends the machine and returns a confirmation message.
func (h *Host) Sleep(ctx context.Context) (string, error) {
	if len(h.sleep) == 0 {
		return "", ErrUnsupported
	}
	if err := h.exec(ctx, h.sleep); err != nil {
		return "", err
	}
	return "machine put to sleep", nil
}

// Shutdown powers the machine off.
func (h *Host) Shutdown(ctx context.Context) error {
	if len(h.shutdown) == 0 {
		return ErrUnsupported
	}
	return h.exec(ctx, h.shutdown)
}

func (h *Host) exec(ctx context.Context, steps []step) error {
	var errs []error
	for _, s := range steps {
		if err := h.run(ctx, s.name, s.args...); err != nil {
			if s.optional {
				continue
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DryRun only logs the requested action.
type DryRun struct {
	log *logger.Logger
}

func NewDryRun(log *logger.Logger) *DryRun {
	return &DryRun{log: log}
}

func (d *DryRun) Sleep(ctx context.Context) (string, error) {
	if d.log != nil {
		d.log.Infow("power_dry_run", "action", "sleep")
	}
	return "dry run: sleep skipped", nil
}

func (d *DryRun) Shutdown(ctx context.Context) error {
	if d.log != nil {
		d.log.Infow("power_dry_run", "action", "shutdown")
	}
	return nil
}
