package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/service"
)

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
	ran   chan struct{}
}

func (f *fakeRefresher) RefreshStatuses(context.Context) (service.RefreshReport, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.ran != nil {
		f.ran <- struct{}{}
	}
	return service.RefreshReport{Checked: 1}, f.err
}

type fakeSource struct {
	inputs []domain.LinkInput
	err    error
}

func (f fakeSource) Path() string { return "/fake.yaml" }

func (f fakeSource) Candidates() ([]domain.LinkInput, error) { return f.inputs, f.err }

type fakeImporter struct {
	got      []domain.LinkInput
	failures []error
	calls    int
}

func (f *fakeImporter) Import(_ context.Context, inputs []domain.LinkInput) (service.ImportReport, error) {
	f.calls++
	f.got = inputs
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return service.ImportReport{}, err
	}
	return service.ImportReport{Added: len(inputs)}, nil
}

var errStale = &domain.StoreError{Kind: domain.ErrStaleSnapshot, Op: "compare-and-replace"}

func TestStatusRefresher_ManualTrigger(t *testing.T) {
	ref := &fakeRefresher{ran: make(chan struct{}, 1)}
	trigger := make(chan struct{}, 1)
	sr := NewStatusRefresher(ref, logger.Nop(), 0, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sr.Start(ctx)
	defer sr.Stop()

	trigger <- struct{}{}

	select {
	case <-ref.ran:
	case <-time.After(time.Second):
		t.Fatal("manual trigger did not run a refresh")
	}
}

func TestStatusRefresher_Ticker(t *testing.T) {
	ref := &fakeRefresher{ran: make(chan struct{}, 4)}
	sr := NewStatusRefresher(ref, logger.Nop(), 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sr.Start(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-ref.ran:
		case <-time.After(time.Second):
			t.Fatalf("tick %d did not run a refresh", i)
		}
	}
	sr.Stop()
	sr.Stop() // idempotent
}

func TestStatusRefresher_StaleIsSkipped(t *testing.T) {
	sr := NewStatusRefresher(&fakeRefresher{err: errStale}, logger.Nop(), 0, nil)

	if err := sr.Refresh(context.Background()); err != nil {
		t.Errorf("stale refresh should be skipped, got %v", err)
	}
}

func TestStatusRefresher_FatalSurfaces(t *testing.T) {
	ioErr := &domain.StoreError{Kind: domain.ErrIOFailure, Op: "read"}
	sr := NewStatusRefresher(&fakeRefresher{err: ioErr}, logger.Nop(), 0, nil)

	if err := sr.Refresh(context.Background()); !errors.Is(err, domain.ErrIOFailure) {
		t.Errorf("Refresh() error = %v, want io failure", err)
	}
}

func TestImporter_CombinesSources(t *testing.T) {
	imp := &fakeImporter{}
	im := NewImporter([]Source{
		fakeSource{inputs: []domain.LinkInput{{URL: "https://a.example"}}},
		fakeSource{err: errors.New("missing file")},
		fakeSource{inputs: []domain.LinkInput{{URL: "https://b.example"}}},
	}, imp, logger.Nop(), 0, nil)

	if err := im.Import(context.Background()); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(imp.got) != 2 {
		t.Errorf("imported %d candidates, want 2", len(imp.got))
	}
}

func TestImporter_AllSourcesFail(t *testing.T) {
	imp := &fakeImporter{}
	im := NewImporter([]Source{fakeSource{err: errors.New("missing file")}}, imp, logger.Nop(), 0, nil)

	if err := im.Import(context.Background()); err == nil {
		t.Error("Import() should fail when no source loads")
	}
	if imp.calls != 0 {
		t.Errorf("service called %d times, want 0", imp.calls)
	}
}

func TestImporter_RetriesStale(t *testing.T) {
	imp := &fakeImporter{failures: []error{errStale}}
	im := NewImporter([]Source{fakeSource{inputs: []domain.LinkInput{{URL: "https://a.example"}}}}, imp, logger.Nop(), 0, nil)

	if err := im.Import(context.Background()); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if imp.calls != 2 {
		t.Errorf("service called %d times, want 2", imp.calls)
	}
}

func TestImporter_GivesUpAfterRetries(t *testing.T) {
	imp := &fakeImporter{failures: []error{errStale, errStale, errStale, errStale}}
	im := NewImporter([]Source{fakeSource{inputs: []domain.LinkInput{{URL: "https://a.example"}}}}, imp, logger.Nop(), 0, nil)

	err := im.Import(context.Background())
	if !errors.Is(err, domain.ErrStaleSnapshot) {
		t.Errorf("Import() error = %v, want stale snapshot", err)
	}
	if imp.calls != maxImportAttempts {
		t.Errorf("service called %d times, want %d", imp.calls, maxImportAttempts)
	}
}
