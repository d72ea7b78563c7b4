package domain

import "time"

// Link is one bookmark in the collection.
//
// A Link is identified by its ID, never by its URL: the URL may be
// edited later while the ID stays the same.
type Link struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is generated once when the link is created.
	ID string `json:"id"`

	// ─────────────────────────────
	// User-editable content
	// ─────────────────────────────

	// URL is the canonical absolute address.
	// Example: https://example.com/docs
	URL string `json:"url"`

	// Title is either user supplied or taken from the fetched page.
	// Nil when neither is available.
	Title *string `json:"title,omitempty"`

	// ─────────────────────────────
	// Observation
	// ─────────────────────────────

	// Status is the last observed reachability of URL.
	Status Status `json:"status"`

	// HTTPStatus is the raw response code of the last fetch, 0 if none.
	HTTPStatus int `json:"http_status,omitempty"`

	// ─────────────────────────────
	// Metadata (owned by the store)
	// ─────────────────────────────

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinkInput is a candidate link as submitted by the caller.
type LinkInput struct {
	URL   string  `json:"url"`
	Title *string `json:"title,omitempty"`
}

// TitleOrEmpty returns the title, or "" when the link has none.
func (l Link) TitleOrEmpty() string {
	if l.Title == nil {
		return ""
	}
	return *l.Title
}

// SameContent reports whether two links carry the same user-visible content.
// Timestamps are ignored and an empty status counts as unknown.
func (l Link) SameContent(o Link) bool {
	return l.ID == o.ID &&
		l.URL == o.URL &&
		l.TitleOrEmpty() == o.TitleOrEmpty() &&
		(l.Title == nil) == (o.Title == nil) &&
		l.Status.OrUnknown() == o.Status.OrUnknown() &&
		l.HTTPStatus == o.HTTPStatus
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
