package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkstash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz reports ready once the collection file can be read and decoded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := d.Service.Read(r.Context()); err != nil {
			d.Logger.Warn("not ready", logger.Error(err))
			writeJSON(d, w, http.StatusServiceUnavailable, readyzResponse{Error: err.Error()})
			return
		}
		writeJSON(d, w, http.StatusOK, readyzResponse{Ready: true})
	}
}
