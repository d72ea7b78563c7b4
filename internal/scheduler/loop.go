package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkstash/internal/logger"
)

// loop runs fn on every tick and on every manual trigger until stopCh is
// closed or ctx is done. A zero interval disables the ticker.
func loop(ctx context.Context, log logger.Logger, interval time.Duration, trigger <-chan struct{}, stopCh <-chan struct{}, fn func(context.Context) error) {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-tick:
			if err := fn(ctx); err != nil {
				log.Error("scheduled run failed", logger.Error(err))
			}
		case <-trigger:
			log.Info("manual run triggered")
			if err := fn(ctx); err != nil {
				log.Error("manual run failed", logger.Error(err))
			}
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}
