package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkstash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
)

type triggerResponse struct {
	Job       string `json:"job"`
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// Trigger asks a background job to run now. A run already queued answers 429.
func Trigger(d deps.Deps, job string, ch chan struct{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ch == nil {
			writeJSON(d, w, http.StatusNotFound, triggerResponse{Job: job, Message: "not configured"})
			return
		}

		select {
		case ch <- struct{}{}:
			d.Logger.Info("manual run triggered via endpoint",
				logger.String("job", job),
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(d, w, http.StatusAccepted, triggerResponse{Job: job, Triggered: true, Message: "triggered"})
		default:
			d.Logger.Warn("run already pending",
				logger.String("job", job),
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(d, w, http.StatusTooManyRequests, triggerResponse{Job: job, Message: "already pending, please wait"})
		}
	}
}
