// Package service composes the validator, the metadata fetcher and the
// collection store into the link operations exposed to callers.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/fetcher"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/validate"
)

const (
	DefaultFetchTimeout = 5 * time.Second
	DefaultWorkers      = 4
)

// Store is the durable collection as seen by the service.
type Store interface {
	Load(ctx context.Context) (domain.Collection, bool, error)
	Replace(ctx context.Context, next domain.Collection) error
	Append(ctx context.Context, record domain.Link, base domain.Collection) (domain.Collection, error)
	CompareAndReplace(ctx context.Context, base, next domain.Collection) (domain.Collection, error)
}

// Service runs the link pipelines. It holds no lock of its own: the store
// serializes writes and fetches run outside of it.
type Service struct {
	store        Store
	fetcher      fetcher.Fetcher
	probe        fetcher.Fetcher
	fetchTimeout time.Duration
	workers      int
	newID        func() string
	logger       logger.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithFetchTimeout bounds every metadata fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithProbe sets the fetcher used by status refresh. It defaults to the
// enrichment fetcher; a refresh usually wants one that bypasses any cache.
func WithProbe(f fetcher.Fetcher) Option {
	return func(s *Service) { s.probe = f }
}

// WithWorkers bounds concurrent fetches during refresh and import.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithIDGenerator overrides uuid-based ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// New builds a Service.
func New(store Store, f fetcher.Fetcher, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:        store,
		fetcher:      f,
		fetchTimeout: DefaultFetchTimeout,
		workers:      DefaultWorkers,
		newID:        uuid.NewString,
		logger:       log.With(logger.String("component", "service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.probe == nil {
		s.probe = f
	}
	return s
}

// Read returns the persisted collection and whether one exists at all.
func (s *Service) Read(ctx context.Context) (domain.Collection, bool, error) {
	return s.store.Load(ctx)
}

// Store replaces the whole collection with c. No per-link validation or
// enrichment runs; the store still refuses collections that break the record
// invariants. Once the write starts it is not interrupted by ctx.
func (s *Service) Store(ctx context.Context, c domain.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.Replace(context.WithoutCancel(ctx), c); err != nil {
		s.logger.Error("failed to store collection", logger.Int("links", len(c)), logger.Error(err))
		return err
	}

	s.logger.Info("collection stored", logger.Int("links", len(c)))
	return nil
}

// enrich fetches metadata for url and merges it with the user title.
// A user title always wins over a fetched one.
func (s *Service) enrich(ctx context.Context, url string, userTitle *string) (fetcher.Outcome, *string) {
	out := s.fetcher.Fetch(ctx, url, s.fetchTimeout)
	if userTitle != nil {
		return out, userTitle
	}
	return out, validate.NormalizeTitle(out.Title)
}

// forget evicts url from the enrichment fetcher's cache, if it keeps one.
func (s *Service) forget(ctx context.Context, url string) {
	if fg, ok := s.fetcher.(fetcher.Forgetter); ok {
		fg.Forget(context.WithoutCancel(ctx), url)
	}
}
