package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RouterDeps are the handlers and middleware the router mounts.
type RouterDeps struct {
	Logger      zerolog.Logger
	Assessments *AssessmentHandler
	History     *HistoryHandler
	Health      *HealthHandler
	Metrics     http.Handler
	RateLimiter *RateLimiter
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", d.Health.Health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		if d.RateLimiter != nil {
			r.Use(RateLimitMiddleware(d.RateLimiter))
		}
		r.Post("/predict", d.Assessments.Predict)
		r.Get("/historial", d.History.History)
		r.Get("/estadisticas", d.History.Statistics)
		r.Get("/evaluaciones/{id}", d.History.Document)
	})

	return r
}
