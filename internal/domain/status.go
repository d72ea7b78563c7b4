package domain

import "net/http"

// Status is a coarse reachability classification of a link.
type Status string

const (
	StatusUnknown     Status = "unknown"      // never fetched, or fetch was inconclusive
	StatusReachable   Status = "reachable"    // 2xx or 3xx
	StatusErrorStatus Status = "error_status" // 4xx or 5xx
	StatusUnreachable Status = "unreachable"  // DNS or connection failure
)

// ClassifyHTTPStatus maps an HTTP response code to a Status.
func ClassifyHTTPStatus(code int) Status {
	switch {
	case code >= http.StatusOK && code < http.StatusBadRequest:
		return StatusReachable
	case code >= http.StatusBadRequest && code < 600:
		return StatusErrorStatus
	default:
		return StatusUnknown
	}
}

// OrUnknown returns s, or StatusUnknown when s is empty.
func (s Status) OrUnknown() Status {
	if s == "" {
		return StatusUnknown
	}
	return s
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusUnknown, StatusReachable, StatusErrorStatus, StatusUnreachable:
		return true
	}
	return false
}
