package service

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/fetcher"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/validate"
)

// State is a step of the add pipeline.
type State string

const (
	StateReceived     State = "received"
	StateValidating   State = "validating"
	StateEnriching    State = "enriching"
	StateRevalidating State = "revalidating"
	StatePersisting   State = "persisting"
	StateDone         State = "done"
	StateRejected     State = "rejected"
)

// Result is a successfully persisted link and the collection it now belongs to.
type Result struct {
	Link       domain.Link       `json:"link"`
	Collection domain.Collection `json:"collection"`
}

// Add admits a new link into the collection described by snapshot.
//
// Validation failures are returned as-is. A fetch failure never fails the
// add. ctx may abandon the operation up to the persisting step without side
// effects; from then on the write runs to completion. A stale snapshot is
// reported with domain.ErrStaleSnapshot: re-read and resubmit.
func (s *Service) Add(ctx context.Context, in domain.LinkInput, snapshot domain.Collection) (Result, error) {
	p := s.pipeline("add", in.URL)

	p.enter(StateValidating)
	v, err := validate.Validate(in, snapshot)
	if err != nil {
		return Result{}, p.reject(err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, p.abandon(err)
	}

	p.enter(StateEnriching)
	out, title := s.enrich(ctx, v.URL, v.Title)
	p.log.Debug("enriched", logger.String("outcome", out.String()))
	if err := ctx.Err(); err != nil {
		return Result{}, p.abandon(err)
	}

	p.enter(StateRevalidating)
	if err := revalidate(v.URL, out, snapshot, ""); err != nil {
		return Result{}, p.reject(err)
	}

	rec := domain.Link{
		ID:         s.newID(),
		URL:        v.URL,
		Title:      title,
		Status:     out.Status,
		HTTPStatus: out.HTTPStatus,
	}

	p.enter(StatePersisting)
	saved, err := s.store.Append(context.WithoutCancel(ctx), rec, snapshot)
	if err != nil {
		return Result{}, p.fail(err)
	}

	return p.done(saved, rec.ID)
}

// revalidate re-checks the URL that will be stored, and the address the fetch
// ended on after redirects, against the snapshot.
func revalidate(url string, out fetcher.Outcome, snapshot domain.Collection, selfID string) error {
	if err := validate.CheckNotDuplicate(url, snapshot, selfID); err != nil {
		return err
	}
	if out.FinalURL == "" || out.FinalURL == url {
		return nil
	}
	err := validate.CheckNotDuplicate(out.FinalURL, snapshot, selfID)
	if errors.Is(err, domain.ErrMalformedURL) {
		return nil
	}
	return err
}

// pipeline tracks one request through the states and logs each transition.
type pipeline struct {
	op    string
	state State
	log   logger.Logger
}

func (s *Service) pipeline(op, url string) *pipeline {
	p := &pipeline{
		op:    op,
		state: StateReceived,
		log:   s.logger.With(logger.String("op", op), logger.String("url", url)),
	}
	p.log.Debug("link request", logger.String("state", string(p.state)))
	return p
}

func (p *pipeline) enter(st State) {
	p.log.Debug("link request",
		logger.String("from", string(p.state)),
		logger.String("state", string(st)))
	p.state = st
}

func (p *pipeline) reject(err error) error {
	p.log.Info("link rejected",
		logger.String("at", string(p.state)),
		logger.Error(err))
	p.state = StateRejected
	return err
}

func (p *pipeline) abandon(err error) error {
	p.log.Debug("link request abandoned",
		logger.String("at", string(p.state)),
		logger.Error(err))
	p.state = StateRejected
	return err
}

func (p *pipeline) fail(err error) error {
	if domain.IsRetryable(err) {
		p.log.Warn("link not persisted, snapshot is stale", logger.Error(err))
	} else {
		p.log.Error("link not persisted", logger.Error(err))
	}
	p.state = StateRejected
	return err
}

func (p *pipeline) done(saved domain.Collection, id string) (Result, error) {
	rec, ok := saved.Find(id)
	if !ok {
		return Result{}, p.fail(domain.ErrNotFound)
	}
	p.state = StateDone
	p.log.Info("link "+p.op+" done",
		logger.String("id", rec.ID),
		logger.String("status", string(rec.Status)))
	return Result{Link: rec, Collection: saved}, nil
}
