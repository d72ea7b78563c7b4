package service

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/validate"
)

// ImportReport summarizes one bulk import.
type ImportReport struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
	Malformed  int `json:"malformed"`
}

// Import adds every acceptable input to the stored collection in one write.
// Inputs are validated against the collection and against each other in
// order; duplicates and malformed URLs are skipped and counted. Accepted links
// are enriched concurrently, then revalidated in order so a redirect onto a
// stored or earlier link counts as a duplicate, before the single
// compare-and-replace.
func (s *Service) Import(ctx context.Context, inputs []domain.LinkInput) (ImportReport, error) {
	var report ImportReport

	snapshot, _, err := s.store.Load(ctx)
	if err != nil {
		return report, err
	}

	working := snapshot.Clone()
	accepted := make([]validate.ValidatedLink, 0, len(inputs))
	for _, in := range inputs {
		v, err := validate.Validate(in, working)
		switch {
		case errors.Is(err, domain.ErrDuplicateLink):
			report.Duplicates++
			continue
		case err != nil:
			report.Malformed++
			s.logger.Debug("import skipped malformed url", logger.String("url", in.URL), logger.Error(err))
			continue
		}
		accepted = append(accepted, v)
		// Placeholder so later inputs dedupe against this one.
		working = append(working, domain.Link{ID: "pending", URL: v.URL})
	}

	if len(accepted) == 0 {
		s.logger.Info("import found nothing new",
			logger.Int("duplicates", report.Duplicates),
			logger.Int("malformed", report.Malformed))
		return report, nil
	}

	urls := make([]string, len(accepted))
	for i, v := range accepted {
		urls[i] = v.URL
	}
	outcomes := s.fetchAll(ctx, s.fetcher, urls)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	next := snapshot.Clone()
	for i, v := range accepted {
		out := outcomes[i]
		if err := revalidate(v.URL, out, next, ""); err != nil {
			report.Duplicates++
			s.logger.Debug("import skipped redirect to existing link",
				logger.String("url", v.URL),
				logger.String("final_url", out.FinalURL))
			continue
		}
		title := v.Title
		if title == nil {
			title = validate.NormalizeTitle(out.Title)
		}
		next = append(next, domain.Link{
			ID:         s.newID(),
			URL:        v.URL,
			Title:      title,
			Status:     out.Status,
			HTTPStatus: out.HTTPStatus,
		})
	}

	report.Added = len(next) - len(snapshot)
	if report.Added == 0 {
		s.logger.Info("import found nothing new",
			logger.Int("duplicates", report.Duplicates),
			logger.Int("malformed", report.Malformed))
		return report, nil
	}

	if _, err := s.store.CompareAndReplace(context.WithoutCancel(ctx), snapshot, next); err != nil {
		return ImportReport{Duplicates: report.Duplicates, Malformed: report.Malformed}, err
	}

	s.logger.Info("links imported",
		logger.Int("added", report.Added),
		logger.Int("duplicates", report.Duplicates),
		logger.Int("malformed", report.Malformed))
	return report, nil
}
