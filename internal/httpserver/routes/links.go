package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkstash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkstash/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkstash/internal/httpserver/mw"
)

func init() { Register(registerLinks) }

func registerLinks(r chi.Router, d deps.Deps) {
	r.Route("/api", func(api chi.Router) {
		api.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		api.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))

		api.Get("/links", handlers.ListLinks(d))

		api.Group(func(w chi.Router) {
			w.Use(mw.RateLimit(mw.RateLimitConfig{
				Burst:      d.WriteBurst,
				PerMinute:  d.WritePerMin,
				MaxClients: 10000,
				TrustProxy: d.TrustProxy,
				Now:        d.TimeNow,
			}))

			w.Post("/links", handlers.AddLink(d))
			w.Put("/links", handlers.StoreLinks(d))
			w.Put("/links/{id}", handlers.UpdateLink(d))
			w.Delete("/links/{id}", handlers.DeleteLink(d))

			w.Post("/import", handlers.Trigger(d, "import", d.ImportTrigger))
			w.Post("/refresh", handlers.Trigger(d, "refresh", d.RefreshTrigger))
		})
	})
}
