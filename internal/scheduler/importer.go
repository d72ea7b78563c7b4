package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/service"
	"github.com/MrSnakeDoc/linkstash/internal/sources/homepage"
)

// maxImportAttempts bounds retries when the collection changes mid-import.
const maxImportAttempts = 3

// LinkImporter adds a batch of candidates to the collection.
type LinkImporter interface {
	Import(ctx context.Context, inputs []domain.LinkInput) (service.ImportReport, error)
}

// Source yields link candidates.
type Source interface {
	Path() string
	Candidates() ([]domain.LinkInput, error)
}

var _ Source = (*homepage.Loader)(nil)

// Importer imports Homepage files into the collection on start, on demand
// and optionally on an interval
type Importer struct {
	sources       []Source
	svc           LinkImporter
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
}

// NewImporter creates a new importer
func NewImporter(
	sources []Source,
	svc LinkImporter,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *Importer {
	return &Importer{
		sources:       sources,
		svc:           svc,
		logger:        log.With(logger.String("job", "import")),
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start imports once, then keeps serving triggers in the background.
// A failed first import is logged, not fatal: the files are optional.
func (im *Importer) Start(ctx context.Context) {
	if err := im.Import(ctx); err != nil {
		im.logger.Warn("initial import failed", logger.Error(err))
	}
	go loop(ctx, im.logger, im.interval, im.manualTrigger, im.stopCh, im.Import)
}

// Stop stops the importer
func (im *Importer) Stop() {
	im.stopOnce.Do(func() { close(im.stopCh) })
}

// Import loads every source and imports the candidates in one batch.
// Sources that fail to load are skipped.
func (im *Importer) Import(ctx context.Context) error {
	var inputs []domain.LinkInput
	var loadErrs []error
	for _, src := range im.sources {
		found, err := src.Candidates()
		if err != nil {
			im.logger.Warn("failed to load import source",
				logger.String("path", src.Path()),
				logger.Error(err))
			loadErrs = append(loadErrs, err)
			continue
		}
		im.logger.Debug("loaded import source",
			logger.String("path", src.Path()),
			logger.Int("count", len(found)))
		inputs = append(inputs, found...)
	}

	if len(inputs) == 0 {
		if len(loadErrs) > 0 {
			return fmt.Errorf("no import source could be loaded: %w", errors.Join(loadErrs...))
		}
		return nil
	}

	for attempt := 1; ; attempt++ {
		report, err := im.svc.Import(ctx, inputs)
		if err == nil {
			im.logger.Info("import finished",
				logger.Int("candidates", len(inputs)),
				logger.Int("added", report.Added),
				logger.Int("duplicates", report.Duplicates),
				logger.Int("malformed", report.Malformed))
			return nil
		}
		if !domain.IsRetryable(err) || attempt == maxImportAttempts {
			return fmt.Errorf("import failed: %w", err)
		}
		im.logger.Warn("collection changed during import, retrying", logger.Int("attempt", attempt))
	}
}
