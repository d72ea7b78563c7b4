package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/service"
)

// Refresher re-probes the stored links.
type Refresher interface {
	RefreshStatuses(ctx context.Context) (service.RefreshReport, error)
}

// StatusRefresher periodically refreshes the reachability of every link
type StatusRefresher struct {
	svc           Refresher
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
}

// NewStatusRefresher creates a new status refresher.
// With a zero interval it only runs on manualTrigger.
func NewStatusRefresher(
	svc Refresher,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *StatusRefresher {
	return &StatusRefresher{
		svc:           svc,
		logger:        log.With(logger.String("job", "status_refresh")),
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the refresh loop in the background
func (sr *StatusRefresher) Start(ctx context.Context) {
	go loop(ctx, sr.logger, sr.interval, sr.manualTrigger, sr.stopCh, sr.Refresh)
}

// Stop stops the refresher
func (sr *StatusRefresher) Stop() {
	sr.stopOnce.Do(func() { close(sr.stopCh) })
}

// Refresh runs one pass. A pass that lost a race with an edit is skipped:
// the next one starts from the new collection.
func (sr *StatusRefresher) Refresh(ctx context.Context) error {
	report, err := sr.svc.RefreshStatuses(ctx)
	if domain.IsRetryable(err) {
		sr.logger.Warn("collection changed during refresh, skipping this pass")
		return nil
	}
	if err != nil {
		return err
	}

	sr.logger.Debug("refresh pass finished",
		logger.Int("checked", report.Checked),
		logger.Int("changed", report.Changed))
	return nil
}
