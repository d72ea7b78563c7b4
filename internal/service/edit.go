package service

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/validate"
)

// Update re-runs the add pipeline for the link id with new content and
// replaces it in place. The id, position and created_at are kept. Without a
// user title the fetched one is used, and failing that the previous one.
func (s *Service) Update(ctx context.Context, id string, in domain.LinkInput, snapshot domain.Collection) (Result, error) {
	p := s.pipeline("update", in.URL)

	p.enter(StateValidating)
	idx := snapshot.IndexOf(id)
	if idx < 0 {
		return Result{}, p.reject(fmt.Errorf("%w: %s", domain.ErrNotFound, id))
	}
	v, err := validate.ValidateExcept(in, snapshot, id)
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
	if err := revalidate(v.URL, out, snapshot, id); err != nil {
		return Result{}, p.reject(err)
	}

	prev := snapshot[idx]
	if title == nil {
		title = prev.Title
	}

	next := snapshot.Clone()
	next[idx] = domain.Link{
		ID:         id,
		URL:        v.URL,
		Title:      title,
		Status:     out.Status,
		HTTPStatus: out.HTTPStatus,
		CreatedAt:  prev.CreatedAt,
	}

	p.enter(StatePersisting)
	saved, err := s.store.CompareAndReplace(context.WithoutCancel(ctx), snapshot, next)
	if err != nil {
		return Result{}, p.fail(err)
	}

	return p.done(saved, id)
}

// Remove deletes the link id from the collection described by snapshot.
func (s *Service) Remove(ctx context.Context, id string, snapshot domain.Collection) (domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := snapshot.IndexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	next := make(domain.Collection, 0, len(snapshot)-1)
	next = append(next, snapshot[:idx]...)
	next = append(next, snapshot[idx+1:]...)

	saved, err := s.store.CompareAndReplace(context.WithoutCancel(ctx), snapshot, next.Clone())
	if err != nil {
		s.logger.Warn("link not removed", logger.String("id", id), logger.Error(err))
		return nil, err
	}

	s.forget(ctx, snapshot[idx].URL)
	s.logger.Info("link removed", logger.String("id", id), logger.String("url", snapshot[idx].URL))
	return saved, nil
}
