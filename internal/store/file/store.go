// Package file persists the link collection as a single JSON document.
//
// Writes are atomic: the full encoding goes to a sibling temp file which is
// then renamed over the canonical path. A crash before the rename leaves the
// previous file intact; after it, the new one. Readers never see a partial file.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/validate"
)

const (
	// TempSuffix is appended to the data file path for the in-flight write.
	TempSuffix = ".tmp"

	filePerm os.FileMode = 0o600
	dirPerm  os.FileMode = 0o750
)

// Store owns the durable collection.
//
// Mutations (Replace, Append, CompareAndReplace) are serialized by mu. Reads
// take no lock: the rename is atomic, so a read sees either the old or the new file.
type Store struct {
	fs      afero.Fs
	path    string
	tmpPath string
	now     func() time.Time
	logger  logger.Logger

	mu sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the clock used for created_at / updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New opens the store at path on fsys, creating the parent directory when
// needed. A temp file left behind by an interrupted write is removed.
func New(fsys afero.Fs, path string, log logger.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		fs:      fsys,
		path:    path,
		tmpPath: path + TempSuffix,
		now:     time.Now,
		logger:  log.With(logger.String("component", "store"), logger.String("path", path)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := fsys.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, &domain.StoreError{Kind: domain.ErrIOFailure, Op: "open", Err: err}
	}

	if _, err := fsys.Stat(s.tmpPath); err == nil {
		s.logger.Warn("removing temp file left by an interrupted write")
		if err := fsys.Remove(s.tmpPath); err != nil {
			return nil, &domain.StoreError{Kind: domain.ErrIOFailure, Op: "open", Err: err}
		}
	}

	return s, nil
}

// Path returns the canonical data file path.
func (s *Store) Path() string { return s.path }

// Read returns the last persisted collection, empty when nothing was stored yet.
func (s *Store) Read(ctx context.Context) (domain.Collection, error) {
	c, _, err := s.Load(ctx)
	return c, err
}

// Load is Read that also reports whether a collection file exists.
func (s *Store) Load(ctx context.Context) (domain.Collection, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return s.load("read")
}

// Replace atomically overwrites the collection with next.
func (s *Store) Replace(ctx context.Context, next domain.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A corrupt file must not block a full replacement: that is how it gets fixed.
	current, _, err := s.load("replace")
	if err != nil {
		if !errors.Is(err, domain.ErrEncodingFailure) {
			return err
		}
		s.logger.Warn("overwriting undecodable collection", logger.Error(err))
		current = nil
	}

	stamped, err := s.stamp("replace", current, next)
	if err != nil {
		return err
	}
	return s.write("replace", stamped)
}

// Append persists base with record added at the end. It fails with
// domain.ErrStaleSnapshot when the stored collection differs from base.
func (s *Store) Append(ctx context.Context, record domain.Link, base domain.Collection) (domain.Collection, error) {
	next := append(base.Clone(), record)
	return s.swap(ctx, "append", base, next)
}

// CompareAndReplace persists next only if the stored collection still matches base.
func (s *Store) CompareAndReplace(ctx context.Context, base, next domain.Collection) (domain.Collection, error) {
	return s.swap(ctx, "compare-and-replace", base, next)
}

func (s *Store) swap(ctx context.Context, op string, base, next domain.Collection) (domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := s.load(op)
	if err != nil {
		return nil, err
	}

	if !current.SameContent(base) {
		s.logger.Warn("rejecting write based on a stale snapshot",
			logger.String("op", op),
			logger.Int("stored", len(current)),
			logger.Int("base", len(base)))
		return nil, &domain.StoreError{Kind: domain.ErrStaleSnapshot, Op: op}
	}

	stamped, err := s.stamp(op, current, next)
	if err != nil {
		return nil, err
	}
	if err := s.write(op, stamped); err != nil {
		return nil, err
	}
	return stamped.Clone(), nil
}

// stamp validates next and sets the store-owned timestamps. Known ids keep
// their created_at; updated_at only moves when the content changed.
func (s *Store) stamp(op string, current, next domain.Collection) (domain.Collection, error) {
	if err := validate.Collection(next); err != nil {
		return nil, &domain.StoreError{Kind: domain.ErrInvalidCollection, Op: op, Err: err}
	}

	prior := make(map[string]domain.Link, len(current))
	for _, l := range current {
		prior[l.ID] = l
	}

	now := s.now().UTC()
	out := next.Clone()
	for i := range out {
		l := &out[i]
		l.Status = l.Status.OrUnknown()

		old, known := prior[l.ID]
		switch {
		case !known:
			l.CreatedAt, l.UpdatedAt = now, now
		case old.SameContent(*l):
			l.CreatedAt, l.UpdatedAt = old.CreatedAt, old.UpdatedAt
		default:
			l.CreatedAt, l.UpdatedAt = old.CreatedAt, now
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		if l.UpdatedAt.IsZero() {
			l.UpdatedAt = now
		}
	}
	return out, nil
}

func (s *Store) load(op string) (domain.Collection, bool, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Collection{}, false, nil
	}
	if err != nil {
		return nil, false, &domain.StoreError{Kind: domain.ErrIOFailure, Op: op, Err: err}
	}

	c, err := Decode(data)
	if err != nil {
		return nil, true, &domain.StoreError{Kind: domain.ErrEncodingFailure, Op: op, Err: err}
	}
	return c, true, nil
}

// write encodes c into the temp file and renames it over the data file.
// On any failure the temp file is removed and the data file is untouched.
func (s *Store) write(op string, c domain.Collection) error {
	data, err := Encode(c)
	if err != nil {
		return &domain.StoreError{Kind: domain.ErrEncodingFailure, Op: op, Err: err}
	}

	if err := s.writeTemp(data); err != nil {
		s.discardTemp()
		return &domain.StoreError{Kind: domain.ErrIOFailure, Op: op, Err: err}
	}

	if err := s.fs.Rename(s.tmpPath, s.path); err != nil {
		s.discardTemp()
		return &domain.StoreError{Kind: domain.ErrIOFailure, Op: op, Err: err}
	}

	s.logger.Debug("collection persisted",
		logger.String("op", op),
		logger.Int("links", len(c)),
		logger.Int("bytes", len(data)))
	return nil
}

func (s *Store) writeTemp(data []byte) error {
	f, err := s.fs.OpenFile(s.tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *Store) discardTemp() {
	if err := s.fs.Remove(s.tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to remove temp file", logger.Error(err))
	}
}

// Encode renders a collection as indented JSON followed by a newline.
// A nil collection is written as an empty array.
func Encode(c domain.Collection) ([]byte, error) {
	if c == nil {
		c = domain.Collection{}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses a stored collection. An empty document or JSON null is an
// empty collection; records breaking the invariants make the document invalid.
func Decode(data []byte) (domain.Collection, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return domain.Collection{}, nil
	}

	var c domain.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c == nil {
		c = domain.Collection{}
	}
	if err := validate.Collection(c); err != nil {
		return nil, err
	}
	return c, nil
}
