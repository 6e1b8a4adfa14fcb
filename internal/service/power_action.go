package service

import (
	"strings"
	"sync"

	"switchbot_panel/internal/models"
)

// ParsePowerAction accepts "shutdown" or "sleep" in any case.
func ParsePowerAction(s string) (models.PowerAction, error) {
	switch a := models.PowerAction(strings.ToLower(strings.TrimSpace(s))); a {
	case models.PowerActionShutdown, models.PowerActionSleep:
		return a, nil
	default:
		return "", ErrInvalidPowerAction
	}
}

// powerActionSetting is the terminal action chosen for the next expiry.
type powerActionSetting struct {
	mu     sync.RWMutex
	action models.PowerAction
}

func newPowerActionSetting(a models.PowerAction) *powerActionSetting {
	return &powerActionSetting{action: a}
}

func (p *powerActionSetting) Get() models.PowerAction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.action
}

func (p *powerActionSetting) Set(a models.PowerAction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.action = a
}
