package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/web"
)

// NewRouter wires the middleware chain and every route of the service.
func NewRouter(app *handlers.App, logger infra.Logger, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
		middleware.I18N(app.Config.DefaultLocale, lookup),
	)

	r.Get("/", web.Index)
	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.SessionCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.SessionGet)
			r.Post("/image", app.SessionSelectImage)
			r.Put("/prompt", app.SessionUpdatePrompt)
			r.Post("/generate", app.SessionGenerate)
			r.Post("/reset", app.SessionReset)
		})
	})

	return r
}
