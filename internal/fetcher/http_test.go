package fetcher

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Example Domain</title></head><body>hi</body></html>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<title>Not Found</title>`))
	})
	mux.HandleFunc("/image", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/page", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/agent", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<title>" + r.UserAgent() + "</title>"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestFetcher() *HTTPFetcher {
	return NewHTTP(Options{UserAgent: "linkstash-test", MaxRedirects: 3}, logger.Nop())
}

func TestHTTPFetcher_Reachable(t *testing.T) {
	srv := newTestServer(t)

	out := newTestFetcher().Fetch(context.Background(), srv.URL+"/page", time.Second)

	require.True(t, out.Available)
	assert.Equal(t, domain.StatusReachable, out.Status)
	assert.Equal(t, http.StatusOK, out.HTTPStatus)
	require.NotNil(t, out.Title)
	assert.Equal(t, "Example Domain", *out.Title)
	assert.Equal(t, srv.URL+"/page", out.FinalURL)
}

func TestHTTPFetcher_ErrorStatus(t *testing.T) {
	srv := newTestServer(t)

	out := newTestFetcher().Fetch(context.Background(), srv.URL+"/missing", time.Second)

	require.True(t, out.Available)
	assert.Equal(t, domain.StatusErrorStatus, out.Status)
	assert.Equal(t, http.StatusNotFound, out.HTTPStatus)
}

func TestHTTPFetcher_NonHTMLHasNoTitle(t *testing.T) {
	srv := newTestServer(t)

	out := newTestFetcher().Fetch(context.Background(), srv.URL+"/image", time.Second)

	require.True(t, out.Available)
	assert.Equal(t, domain.StatusReachable, out.Status)
	assert.Nil(t, out.Title)
}

func TestHTTPFetcher_FollowsRedirect(t *testing.T) {
	srv := newTestServer(t)

	out := newTestFetcher().Fetch(context.Background(), srv.URL+"/old", time.Second)

	require.True(t, out.Available)
	assert.Equal(t, srv.URL+"/page", out.FinalURL)
	require.NotNil(t, out.Title)
	assert.Equal(t, "Example Domain", *out.Title)
}

func TestHTTPFetcher_TooManyRedirects(t *testing.T) {
	srv := newTestServer(t)

	out := newTestFetcher().Fetch(context.Background(), srv.URL+"/loop", time.Second)

	assert.False(t, out.Available)
	assert.Equal(t, ReasonTooManyRedirects, out.Reason)
	assert.Equal(t, domain.StatusUnknown, out.Status)
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	srv := newTestServer(t)

	start := time.Now()
	out := newTestFetcher().Fetch(context.Background(), srv.URL+"/slow", 50*time.Millisecond)

	assert.Less(t, time.Since(start), time.Second, "fetch must honour its timeout")
	assert.False(t, out.Available)
	assert.Equal(t, ReasonTimeout, out.Reason)
	assert.Equal(t, domain.StatusUnknown, out.Status)
	assert.Nil(t, out.Title)
}

func TestHTTPFetcher_Canceled(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := newTestFetcher().Fetch(ctx, srv.URL+"/page", time.Second)

	assert.False(t, out.Available)
	assert.Equal(t, ReasonCanceled, out.Reason)
}

func TestHTTPFetcher_NetworkError(t *testing.T) {
	// Grab a free port and release it so nothing listens there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	out := newTestFetcher().Fetch(context.Background(), "http://"+addr+"/", time.Second)

	assert.False(t, out.Available)
	assert.Equal(t, ReasonNetwork, out.Reason)
	assert.Equal(t, domain.StatusUnreachable, out.Status)
}

func TestHTTPFetcher_UnsupportedScheme(t *testing.T) {
	out := newTestFetcher().Fetch(context.Background(), "ftp://example.com/file", time.Second)

	assert.False(t, out.Available)
	assert.Equal(t, ReasonUnsupportedScheme, out.Reason)
}

func TestHTTPFetcher_SendsUserAgent(t *testing.T) {
	srv := newTestServer(t)

	out := newTestFetcher().Fetch(context.Background(), srv.URL+"/agent", time.Second)

	require.NotNil(t, out.Title)
	assert.Equal(t, "linkstash-test", *out.Title)
}

func TestIsHTML(t *testing.T) {
	assert.True(t, isHTML(""))
	assert.True(t, isHTML("text/html; charset=utf-8"))
	assert.True(t, isHTML("application/xhtml+xml"))
	assert.False(t, isHTML("application/json"))
	assert.False(t, isHTML(";;;"))
}
