package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkstash/internal/httpserver/deps"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Path   string `json:"path,omitempty"`
	Links  *int   `json:"links,omitempty"`
	Exists *bool  `json:"exists,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":       checkStore(r.Context(), d),
			"fetch_cache": checkFetchCache(r.Context(), d),
		}

		writeJSON(d, w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if !components["store"].OK {
		return "critical"
	}
	// The cache only saves fetches; links still save without it.
	if c := components["fetch_cache"]; !c.OK && c.Mode != "disabled" {
		return "degraded"
	}
	return "optimal"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	c, exists, err := d.Service.Read(ctx)
	if err != nil {
		return componentStatus{OK: false, Path: d.DataFile, Error: err.Error()}
	}
	n := len(c)
	return componentStatus{OK: true, Path: d.DataFile, Links: &n, Exists: &exists}
}

func checkFetchCache(ctx context.Context, d deps.Deps) componentStatus {
	if d.FetchCache == nil {
		return componentStatus{OK: false, Mode: "disabled", Impact: "every add fetches the page"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.FetchCache.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: "degraded", Impact: "every add fetches the page", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: "redis"}
}
