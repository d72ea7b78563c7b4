// Package fetcher enriches a URL with live metadata (page title, HTTP status).
//
// Fetching is advisory: a Fetcher never returns an error. Every failure is
// folded into an unavailable Outcome carrying a Reason, so callers can always
// proceed with an unenriched link.
package fetcher

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
)

// Reason explains why an Outcome is unavailable.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonTimeout           Reason = "timeout"
	ReasonCanceled          Reason = "canceled"
	ReasonNetwork           Reason = "network"
	ReasonBadRequest        Reason = "bad_request"
	ReasonTooManyRedirects  Reason = "too_many_redirects"
	ReasonParse             Reason = "parse"
	ReasonUnsupportedScheme Reason = "unsupported_scheme"
)

// Outcome is the result of one fetch.
type Outcome struct {
	Available  bool          `json:"available"`
	Title      *string       `json:"title,omitempty"`
	Status     domain.Status `json:"status"`
	HTTPStatus int           `json:"http_status,omitempty"`
	FinalURL   string        `json:"final_url,omitempty"`
	Reason     Reason        `json:"reason,omitempty"`
}

// Unavailable builds the outcome for a failed fetch.
// Connection-level failures are reported as unreachable, everything else as unknown.
func Unavailable(reason Reason) Outcome {
	status := domain.StatusUnknown
	if reason == ReasonNetwork {
		status = domain.StatusUnreachable
	}
	return Outcome{Available: false, Status: status, Reason: reason}
}

// Fetcher fetches metadata for a URL within timeout.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, timeout time.Duration) Outcome
}

// Func adapts a plain function to Fetcher.
type Func func(ctx context.Context, rawURL string, timeout time.Duration) Outcome

func (f Func) Fetch(ctx context.Context, rawURL string, timeout time.Duration) Outcome {
	return f(ctx, rawURL, timeout)
}
