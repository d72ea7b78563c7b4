package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/linkstash/internal/bridge"
	"github.com/MrSnakeDoc/linkstash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
)

func writeJSON(d deps.Deps, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}

// writeRaw writes an already encoded JSON document.
func writeRaw(d deps.Deps, w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body + "\n")); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}

func writeError(d deps.Deps, w http.ResponseWriter, e *bridge.LinkSavingError) {
	writeJSON(d, w, StatusFor(e.Kind), bridge.Reply{Result: bridge.ResultError, Error: e})
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(kind bridge.Kind) int {
	switch kind {
	case bridge.KindInvalidInput:
		return http.StatusBadRequest
	case bridge.KindNotFound:
		return http.StatusNotFound
	case bridge.KindDuplicateLink:
		return http.StatusConflict
	case bridge.KindStaleSnapshot:
		return http.StatusPreconditionFailed
	case bridge.KindMalformedURL, bridge.KindInvalidCollection:
		return http.StatusUnprocessableEntity
	case bridge.KindCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
