package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/fetcher"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/validate"
)

// RefreshReport summarizes one status refresh.
type RefreshReport struct {
	Checked  int           `json:"checked"`
	Changed  int           `json:"changed"`
	Duration time.Duration `json:"duration"`
}

// RefreshStatuses re-fetches every link and records the new status. Links
// without a title pick up the fetched one. The result is written with a
// compare-and-replace on the snapshot that was probed, so edits made while
// the probes ran win and the refresh reports domain.ErrStaleSnapshot.
func (s *Service) RefreshStatuses(ctx context.Context) (RefreshReport, error) {
	start := time.Now()

	snapshot, _, err := s.store.Load(ctx)
	if err != nil {
		return RefreshReport{}, err
	}

	outcomes := s.fetchAll(ctx, s.probe, urlsOf(snapshot))
	if err := ctx.Err(); err != nil {
		return RefreshReport{}, err
	}

	next := snapshot.Clone()
	changed := 0
	for i, out := range outcomes {
		l := &next[i]
		before := *l

		// An unknown result says nothing new about a link probed before.
		if out.Status != domain.StatusUnknown || l.Status == "" {
			l.Status = out.Status
			l.HTTPStatus = out.HTTPStatus
		}
		if l.Title == nil {
			l.Title = validate.NormalizeTitle(out.Title)
		}

		if !before.SameContent(*l) {
			changed++
		}
		if before.Status != l.Status {
			s.forget(ctx, l.URL)
		}
	}

	report := RefreshReport{Checked: len(snapshot), Changed: changed}
	if changed > 0 {
		if _, err := s.store.CompareAndReplace(context.WithoutCancel(ctx), snapshot, next); err != nil {
			return report, err
		}
	}

	report.Duration = time.Since(start)
	s.logger.Info("link statuses refreshed",
		logger.Int("checked", report.Checked),
		logger.Int("changed", report.Changed),
		logger.Duration("took", report.Duration))
	return report, nil
}

// fetchAll fetches urls with at most s.workers requests in flight. The
// result at index i belongs to urls[i].
func (s *Service) fetchAll(ctx context.Context, f fetcher.Fetcher, urls []string) []fetcher.Outcome {
	outcomes := make([]fetcher.Outcome, len(urls))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, u := range urls {
		g.Go(func() error {
			outcomes[i] = f.Fetch(ctx, u, s.fetchTimeout)
			return nil
		})
	}
	_ = g.Wait() // fetches never fail

	return outcomes
}

func urlsOf(c domain.Collection) []string {
	urls := make([]string, len(c))
	for i, l := range c {
		urls[i] = l.URL
	}
	return urls
}
