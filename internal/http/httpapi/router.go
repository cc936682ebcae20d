package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(cfg.AllowedOrigins),
		middleware.Logger(app.Logger),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/generations", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
		r.Post("/", app.Generate)
	})

	r.Route("/v1/records", func(r chi.Router) {
		r.Post("/", app.CreateRecord)
		r.Get("/{id}", app.LocateRecord)
		r.Post("/{id}/video", app.AttachVideo)
	})

	return r
}
