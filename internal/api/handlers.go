package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/alisadev/weather-skill/internal/skill"
)

// textBadRequest is spoken when the webhook body cannot be decoded at all.
const textBadRequest = "Не удалось обработать запрос."

// TurnHandler is the interface satisfied by skill.Orchestrator.
type TurnHandler interface {
	HandleTurn(ctx context.Context, req *skill.Request) skill.Response
}

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	orchestrator TurnHandler
	log          *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(orchestrator TurnHandler, log *slog.Logger) *Handlers {
	return &Handlers{orchestrator: orchestrator, log: log}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Webhook handles POST / — one Alice dialog turn.
// The platform expects HTTP 200 with a protocol envelope for every request,
// so even an undecodable body is answered in-character rather than with an
// error status.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	var req skill.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode webhook body", "err", err)
		writeJSON(w, http.StatusOK, skill.NewResponse(textBadRequest))
		return
	}

	resp := h.orchestrator.HandleTurn(r.Context(), &req)
	writeJSON(w, http.StatusOK, resp)
}

// redisPinger is satisfied by redis.Client; nil means no Redis is configured.
type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc reporting service health.
// When a Redis pinger is supplied its connectivity is checked too.
func HealthHandlerFunc(redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if redis != nil {
			if err := redis.Ping(ctx); err != nil {
				log.Error("health check: redis ping failed", "err", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"redis":  "error",
				})
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
