package service

import (
	"context"
	"fmt"

	"switchbot_panel/internal/models"
)

// CountdownService is the countdown as seen by the panel: every start,
// cancel and rejected start ends up in the session log.
type CountdownService struct {
	engine *Countdown
	action *powerActionSetting
	events *EventLogService
}

func NewCountdownService(engine *Countdown, action *powerActionSetting, events *EventLogService) *CountdownService {
	return &CountdownService{engine: engine, action: action, events: events}
}

// Start validates and starts the countdown. A non-nil action replaces the
// terminal action for this and later expiries.
func (s *CountdownService) Start(ctx context.Context, minutes int, action *models.PowerAction) error {
	var chosen models.PowerAction
	if action != nil {
		a, err := ParsePowerAction(string(*action))
		if err != nil {
			s.events.Error(ctx, fmt.Sprintf("cannot start countdown: %v", err))
			return err
		}
		chosen = a
	}

	if err := s.engine.Start(minutes); err != nil {
		s.events.Error(ctx, fmt.Sprintf("cannot start countdown: %v", err))
		return err
	}
	if chosen != "" {
		s.action.Set(chosen)
	}

	s.events.Info(ctx, fmt.Sprintf("countdown started: %d min, then %s", minutes, s.action.Get()))
	return nil
}

// Cancel stops a running countdown. Returns false when nothing was running.
func (s *CountdownService) Cancel(ctx context.Context) bool {
	if !s.engine.Cancel() {
		return false
	}
	s.events.Info(ctx, "countdown cancelled")
	return true
}

func (s *CountdownService) State() models.CountdownState {
	return s.engine.State()
}

func (s *CountdownService) Observe(fn func(models.CountdownState)) {
	s.engine.Observe(fn)
}
