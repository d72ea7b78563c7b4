package fetcher

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/validate"
)

// Cache stores fetch outcomes by normalized URL.
type Cache interface {
	GetOutcome(ctx context.Context, key string) (Outcome, bool, error)
	SaveOutcome(ctx context.Context, key string, o Outcome) error
	InvalidateOutcome(ctx context.Context, key string) error
}

// Forgetter drops whatever a fetcher remembers about a URL.
type Forgetter interface {
	Forget(ctx context.Context, rawURL string)
}

var _ Forgetter = (*Cached)(nil)

// Cached wraps a Fetcher with a Cache. Only available outcomes are cached;
// cache errors are logged and otherwise ignored.
type Cached struct {
	next   Fetcher
	cache  Cache
	logger logger.Logger
}

func NewCached(next Fetcher, cache Cache, log logger.Logger) *Cached {
	return &Cached{next: next, cache: cache, logger: log}
}

func (c *Cached) Fetch(ctx context.Context, rawURL string, timeout time.Duration) Outcome {
	key, err := validate.Normalize(rawURL)
	if err != nil {
		return c.next.Fetch(ctx, rawURL, timeout)
	}

	if o, ok, err := c.cache.GetOutcome(ctx, key); err != nil {
		c.logger.Warn("fetch cache read failed", logger.String("url", key), logger.Error(err))
	} else if ok {
		c.logger.Debug("fetch cache hit", logger.String("url", key))
		return o
	}

	o := c.next.Fetch(ctx, rawURL, timeout)
	if !o.Available {
		return o
	}

	if err := c.cache.SaveOutcome(ctx, key, o); err != nil {
		c.logger.Warn("fetch cache write failed", logger.String("url", key), logger.Error(err))
	}
	return o
}

// Forget evicts the cached outcome of rawURL so the next Fetch goes out.
func (c *Cached) Forget(ctx context.Context, rawURL string) {
	key, err := validate.Normalize(rawURL)
	if err != nil {
		return
	}
	if err := c.cache.InvalidateOutcome(ctx, key); err != nil {
		c.logger.Warn("fetch cache invalidate failed", logger.String("url", key), logger.Error(err))
	}
}
