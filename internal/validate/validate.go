// Package validate decides whether a candidate link may enter the collection.
//
// Everything here is pure: no I/O, no clock, no logging.
package validate

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
)

// ValidatedLink is a candidate that passed structural and duplicate checks.
type ValidatedLink struct {
	// URL is the trimmed URL as submitted.
	URL string
	// Normalized is the comparison key used for deduplication.
	Normalized string
	// Title is the whitespace-normalized user title, nil when absent or blank.
	Title *string
}

// Validate checks candidate against existing.
func Validate(candidate domain.LinkInput, existing domain.Collection) (ValidatedLink, error) {
	return ValidateExcept(candidate, existing, "")
}

// ValidateExcept is Validate ignoring the record with id selfID, used when a
// link is replaced in place.
func ValidateExcept(candidate domain.LinkInput, existing domain.Collection, selfID string) (ValidatedLink, error) {
	raw := strings.TrimSpace(candidate.URL)

	normalized, err := Normalize(raw)
	if err != nil {
		return ValidatedLink{}, err
	}

	if err := checkNormalized(raw, normalized, existing, selfID); err != nil {
		return ValidatedLink{}, err
	}

	return ValidatedLink{
		URL:        raw,
		Normalized: normalized,
		Title:      NormalizeTitle(candidate.Title),
	}, nil
}

// CheckNotDuplicate returns a *domain.DuplicateLinkError when rawURL matches a
// record in existing other than selfID.
func CheckNotDuplicate(rawURL string, existing domain.Collection, selfID string) error {
	normalized, err := Normalize(rawURL)
	if err != nil {
		return err
	}
	return checkNormalized(rawURL, normalized, existing, selfID)
}

func checkNormalized(raw, normalized string, existing domain.Collection, selfID string) error {
	for _, l := range existing {
		if l.ID == selfID && selfID != "" {
			continue
		}
		other, err := Normalize(l.URL)
		if err != nil {
			// A malformed stored URL cannot collide with a well-formed one.
			continue
		}
		if other == normalized {
			return &domain.DuplicateLinkError{URL: raw, ExistingID: l.ID}
		}
	}
	return nil
}

// ParseAbsolute parses raw and requires a scheme and a host.
func ParseAbsolute(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty url", domain.ErrMalformedURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", domain.ErrMalformedURL, raw, err)
	}
	if u.Scheme == "" || u.Host == "" || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute url", domain.ErrMalformedURL, raw)
	}
	return u, nil
}

// Normalize returns the deduplication key of raw: scheme and host lower-cased,
// trailing slashes of the path removed. Query, fragment and path escaping are kept.
//
//	"HTTPS://Example.com/docs/" -> "https://example.com/docs"
//	"https://example.com/"      -> "https://example.com"
func Normalize(raw string) (string, error) {
	u, err := ParseAbsolute(raw)
	if err != nil {
		return "", err
	}

	n := *u
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)
	escaped := strings.TrimRight(u.EscapedPath(), "/")
	path, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedURL, err)
	}
	n.Path, n.RawPath = path, escaped
	return n.String(), nil
}

// NormalizeTitle collapses whitespace runs and trims. Blank titles become nil.
func NormalizeTitle(title *string) *string {
	if title == nil {
		return nil
	}
	collapsed := strings.Join(strings.Fields(*title), " ")
	if collapsed == "" {
		return nil
	}
	return &collapsed
}

// Collection checks the record invariants of a whole collection: unique ids,
// non-empty ids, well-formed urls and known statuses.
func Collection(c domain.Collection) error {
	if id, dup := c.DuplicateID(); dup {
		return fmt.Errorf("duplicate id %q", id)
	}
	for i, l := range c {
		if l.ID == "" {
			return fmt.Errorf("record %d has no id", i)
		}
		if _, err := ParseAbsolute(l.URL); err != nil {
			return fmt.Errorf("record %s: %w", l.ID, err)
		}
		if l.Status != "" && !l.Status.Valid() {
			return fmt.Errorf("record %s: unknown status %q", l.ID, l.Status)
		}
	}
	return nil
}
