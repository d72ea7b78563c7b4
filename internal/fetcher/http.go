package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/utils"
)

var errTooManyRedirects = errors.New("too many redirects")

// Options configures HTTPFetcher.
type Options struct {
	UserAgent     string
	MaxBody       int64 // bytes of body inspected for a title
	MaxRedirects  int
	SkipTLSVerify bool
}

// HTTPFetcher fetches pages over HTTP(S) and extracts their title.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	logger    logger.Logger
}

// NewHTTP builds a fetcher with its own transport.
// The per-call timeout is applied through the request context, not the client.
func NewHTTP(opts Options, log logger.Logger) *HTTPFetcher {
	if opts.MaxBody <= 0 {
		opts.MaxBody = 1 << 20
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = 10
	}
	maxRedirects := opts.MaxRedirects

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: opts.SkipTLSVerify, //nolint:gosec // opt-in for dev setups
		},
		MaxIdleConns:    32,
		IdleConnTimeout: 60 * time.Second,
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBody,
		logger:    log,
	}
}

// Fetch performs a GET on rawURL. It never blocks longer than timeout.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) Outcome {
	start := time.Now()
	out := f.fetch(ctx, rawURL, timeout)

	f.logger.Debug("metadata fetch",
		logger.String("url", rawURL),
		logger.Bool("available", out.Available),
		logger.String("status", string(out.Status)),
		logger.Int("http_status", out.HTTPStatus),
		logger.String("reason", string(out.Reason)),
		logger.Duration("elapsed", time.Since(start)))

	return out
}

func (f *HTTPFetcher) fetch(parent context.Context, rawURL string, timeout time.Duration) Outcome {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return Unavailable(ReasonBadRequest)
	}
	switch strings.ToLower(req.URL.Scheme) {
	case "http", "https":
	default:
		return Unavailable(ReasonUnsupportedScheme)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return Unavailable(classify(parent, ctx, err))
	}
	defer utils.Close(resp.Body)

	out := Outcome{
		Available:  true,
		Status:     domain.ClassifyHTTPStatus(resp.StatusCode),
		HTTPStatus: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
	}

	if !isHTML(resp.Header.Get("Content-Type")) {
		return out
	}

	title, err := ExtractTitle(io.LimitReader(resp.Body, f.maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		if ctx.Err() != nil {
			return Unavailable(classify(parent, ctx, ctx.Err()))
		}
		return Unavailable(ReasonParse)
	}
	out.Title = title

	return out
}

// classify maps a transport error to a Reason. parent is the caller's context,
// ctx the one carrying the fetch timeout.
func classify(parent, ctx context.Context, err error) Reason {
	switch {
	case errors.Is(err, errTooManyRedirects):
		return ReasonTooManyRedirects
	case parent.Err() != nil && errors.Is(parent.Err(), context.Canceled):
		return ReasonCanceled
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonNetwork
}

// isHTML reports whether a Content-Type may carry an HTML document.
// A missing header is treated as HTML.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func (o Outcome) String() string {
	if !o.Available {
		return fmt.Sprintf("unavailable(%s)", o.Reason)
	}
	return fmt.Sprintf("%s(%d)", o.Status, o.HTTPStatus)
}
