package service

import (
	"context"
	"fmt"
	"sync"

	"switchbot_panel/internal/models"
)

// DeviceBackend is the cloud device directory and command endpoint.
type DeviceBackend interface {
	FetchCatalog(ctx context.Context) (models.BackendCatalog, error)
	Dispatch(ctx context.Context, deviceID, command string) error
	Status(ctx context.Context, deviceID string) (models.DeviceStatus, error)
}

// Merge builds the uniform device list: physical devices first, each source
// list in its own order, no deduplication.
func Merge(physical, infrared []models.BackendDevice) []models.Device {
	out := make([]models.Device, 0, len(physical)+len(infrared))
	for _, d := range physical {
		out = append(out, models.Device{ID: d.ID, Name: d.Name, Kind: models.KindPhysical, TypeTag: d.TypeTag})
	}
	for _, d := range infrared {
		out = append(out, models.Device{ID: d.ID, Name: d.Name, Kind: models.KindInfrared, TypeTag: d.TypeTag})
	}
	return out
}

// CatalogService holds the last fetched device list.
type CatalogService struct {
	mu      sync.RWMutex
	devices []models.Device

	backend DeviceBackend
	events  *EventLogService
}

func NewCatalogService(backend DeviceBackend, events *EventLogService) *CatalogService {
	return &CatalogService{backend: backend, events: events}
}

// Refresh replaces the catalog with a fresh fetch. On failure the catalog is
// emptied, one error entry is logged and the error is returned.
func (s *CatalogService) Refresh(ctx context.Context) ([]models.Device, error) {
	cat, err := s.backend.FetchCatalog(ctx)
	if err != nil {
		s.mu.Lock()
		s.devices = nil
		s.mu.Unlock()
		s.events.Error(ctx, fmt.Sprintf("failed to fetch device list: %v", err))
		return nil, err
	}

	devices := Merge(cat.Physical, cat.InfraredRemotes)
	s.mu.Lock()
	s.devices = devices
	s.mu.Unlock()

	s.events.Info(ctx, fmt.Sprintf("device list fetched (%d devices)", len(devices)))
	return s.Devices(), nil
}

// Sync is the background variant of Refresh: on failure the current catalog
// is kept and the error is logged.
func (s *CatalogService) Sync(ctx context.Context) ([]models.Device, error) {
	cat, err := s.backend.FetchCatalog(ctx)
	if err != nil {
		s.mu.RLock()
		kept := len(s.devices)
		s.mu.RUnlock()
		s.events.Error(ctx, fmt.Sprintf("failed to refresh device list, keeping %d devices: %v", kept, err))
		return nil, err
	}

	devices := Merge(cat.Physical, cat.InfraredRemotes)
	s.mu.Lock()
	s.devices = devices
	s.mu.Unlock()
	return s.Devices(), nil
}

// Devices returns a copy of the catalog in catalog order.
func (s *CatalogService) Devices() []models.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Device, len(s.devices))
	copy(out, s.devices)
	return out
}

func (s *CatalogService) Find(id string) (models.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.devices {
		if d.ID == id {
			return d, true
		}
	}
	return models.Device{}, false
}
