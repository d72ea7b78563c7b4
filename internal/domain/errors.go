package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedURL is returned when a candidate URL is not an absolute URI.
	ErrMalformedURL = errors.New("malformed url")

	// ErrDuplicateLink is returned when the normalized URL is already in the collection.
	ErrDuplicateLink = errors.New("duplicate link")

	// ErrNotFound is returned when a link ID does not exist in the collection.
	ErrNotFound = errors.New("link not found")

	// ErrStaleSnapshot is returned when the caller's snapshot no longer matches disk.
	// The caller should re-read the collection and resubmit.
	ErrStaleSnapshot = errors.New("stale snapshot")

	// ErrIOFailure covers device and permission errors of the durable medium.
	ErrIOFailure = errors.New("io failure")

	// ErrEncodingFailure is returned when the on-disk collection cannot be decoded
	// or a collection cannot be encoded.
	ErrEncodingFailure = errors.New("encoding failure")

	// ErrInvalidCollection is returned when a collection breaks the record invariants
	// (duplicate ids, malformed urls) and therefore cannot be persisted.
	ErrInvalidCollection = errors.New("invalid collection")
)

// DuplicateLinkError identifies the record that already holds the URL.
type DuplicateLinkError struct {
	URL        string
	ExistingID string
}

func (e *DuplicateLinkError) Error() string {
	return fmt.Sprintf("duplicate link: %s already stored as %s", e.URL, e.ExistingID)
}

func (e *DuplicateLinkError) Unwrap() error { return ErrDuplicateLink }

// StoreError is returned by the collection store.
// Kind is one of ErrIOFailure, ErrEncodingFailure, ErrStaleSnapshot, ErrInvalidCollection.
type StoreError struct {
	Kind error
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store %s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("store %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsRetryable reports whether the caller can fix err by re-reading and resubmitting.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStaleSnapshot)
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMalformedURL) || errors.Is(err, ErrDuplicateLink)
}
