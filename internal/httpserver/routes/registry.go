package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkstash/internal/httpserver/deps"
)

type (
	Registrar func(r chi.Router, d deps.Deps)
	// Middleware builds a per-route middleware once the deps are known.
	Middleware func(d deps.Deps) func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

var registry []entry

// Register a registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// RegisterAll mounts every registered route. Called once from New.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		mount(r, d, e)
	}
}

func mount(r chi.Router, d deps.Deps, e entry) {
	if len(e.mws) == 0 {
		e.reg(r, d)
		return
	}
	built := make([]func(http.Handler) http.Handler, len(e.mws))
	for i, m := range e.mws {
		built[i] = m(d)
	}
	e.reg(r.With(built...), d)
}
