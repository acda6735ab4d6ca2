// Package scheduler runs the periodic FX refresh job.
package scheduler

import (
	"context"
	"fmt"

	"github.com/lineasupply/storefront-api/internal/application/service"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
	"github.com/robfig/cron/v3"
)

// RefreshScheduler refreshes exchange rates on a cron schedule so the
// cache rarely expires between requests. Missed or failed runs are fine:
// the tiered read path refreshes lazily on demand.
type RefreshScheduler struct {
	cron   *cron.Cron
	fx     *service.FxService
	logger logger.Logger
}

// NewRefreshScheduler creates a scheduler around the FX service
func NewRefreshScheduler(fx *service.FxService, log logger.Logger) *RefreshScheduler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RefreshScheduler{
		cron:   cron.New(),
		fx:     fx,
		logger: log,
	}
}

// Start registers the refresh job and starts the cron loop.
// spec accepts standard cron expressions and @every durations.
func (s *RefreshScheduler) Start(ctx context.Context, spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.fx.Refresh(ctx, false); err != nil {
			s.logger.Error("Scheduled rate refresh failed", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		s.logger.Debug("Scheduled rate refresh completed", nil)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule rate refresh %q: %w", spec, err)
	}

	s.cron.Start()
	s.logger.Info("Rate refresh scheduled", map[string]interface{}{
		"spec": spec,
	})

	return nil
}

// Stop halts the cron loop and waits for a running job to finish
func (s *RefreshScheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}
