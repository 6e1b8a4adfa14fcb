package service

import (
	"context"
	"time"

	"switchbot_panel/internal/logger"

	"github.com/robfig/cron/v3"
)

// CatalogScheduler re-fetches the device list on a cron schedule. A failed
// scheduled fetch keeps the previous list.
type CatalogScheduler struct {
	cron    *cron.Cron
	catalog Catalog
	timeout time.Duration
	log     *logger.Logger
}

// NewCatalogScheduler validates schedule ("@every 30m", "0 */15 * * * *", ...)
// and registers the refresh job. Call Start to run it.
func NewCatalogScheduler(catalog Catalog, schedule string, timeout time.Duration, log *logger.Logger) (*CatalogScheduler, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &CatalogScheduler{
		cron:    cron.New(cron.WithSeconds()),
		catalog: catalog,
		timeout: timeout,
		log:     log,
	}
	if _, err := s.cron.AddFunc(schedule, s.refresh); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CatalogScheduler) Start() {
	s.log.Infow("catalog_scheduler_started")
	s.cron.Start()
}

// Stop waits for a running refresh to finish.
func (s *CatalogScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Infow("catalog_scheduler_stopped")
}

func (s *CatalogScheduler) refresh() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if _, err := s.catalog.Sync(ctx); err != nil {
		s.log.Errorw("catalog_refresh_failed", "err", err)
	}
}
