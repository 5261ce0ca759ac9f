package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds and returns the Chi router.
// The Alice dispatcher posts every dialog turn to the root path; health is a
// plain liveness/readiness probe.
func NewRouter(handlers *Handlers, redisClient redisPinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Post("/", handlers.Webhook)
	r.Get("/health", HealthHandlerFunc(redisClient, log))

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
