package domain

import (
	"errors"
	"testing"
)

func TestClassifyHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code int
		want Status
	}{
		{name: "ok", code: 200, want: StatusReachable},
		{name: "no content", code: 204, want: StatusReachable},
		{name: "not modified", code: 304, want: StatusReachable},
		{name: "not found", code: 404, want: StatusErrorStatus},
		{name: "server error", code: 503, want: StatusErrorStatus},
		{name: "informational", code: 101, want: StatusUnknown},
		{name: "zero", code: 0, want: StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyHTTPStatus(tt.code); got != tt.want {
				t.Errorf("ClassifyHTTPStatus(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusUnknown, StatusReachable, StatusErrorStatus, StatusUnreachable} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Status("teapot").Valid() {
		t.Error("unexpected status should not be valid")
	}
}

func TestStoreErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &StoreError{Kind: ErrIOFailure, Op: "replace", Err: cause}

	if !errors.Is(err, ErrIOFailure) {
		t.Error("StoreError should match its kind")
	}
	if !errors.Is(err, cause) {
		t.Error("StoreError should match its cause")
	}
	if IsRetryable(err) {
		t.Error("io failure must not be retryable")
	}

	stale := &StoreError{Kind: ErrStaleSnapshot, Op: "append"}
	if !IsRetryable(stale) {
		t.Error("stale snapshot should be retryable")
	}
	if stale.Error() != "store append: stale snapshot" {
		t.Errorf("unexpected message %q", stale.Error())
	}
}

func TestDuplicateLinkError(t *testing.T) {
	var err error = &DuplicateLinkError{URL: "https://example.com", ExistingID: "abc"}

	if !errors.Is(err, ErrDuplicateLink) {
		t.Error("DuplicateLinkError should wrap ErrDuplicateLink")
	}
	if !IsValidation(err) {
		t.Error("duplicate should be a validation error")
	}

	var dup *DuplicateLinkError
	if !errors.As(err, &dup) || dup.ExistingID != "abc" {
		t.Errorf("errors.As failed: %+v", dup)
	}
}
