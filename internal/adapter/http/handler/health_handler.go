package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/bankdash/internal/domain"
)

// ModeReporter reports the active gateway mode.
type ModeReporter interface {
	Mode() domain.GatewayMode
}

// Pinger checks a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	gateway ModeReporter
	redis   Pinger
}

// NewHealthHandler creates a new HealthHandler. redis may be nil when
// caching is disabled.
func NewHealthHandler(gateway ModeReporter, redis Pinger) *HealthHandler {
	return &HealthHandler{
		gateway: gateway,
		redis:   redis,
	}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]string{
		"status":  "ready",
		"gateway": string(h.gateway.Mode()),
		"redis":   "disabled",
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unhealthy", err.Error())
			return
		}
		status["redis"] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}
