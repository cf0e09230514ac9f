package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"itemname-api/pkg/utils"

	"go.uber.org/zap"
)

// ReadinessCheck reports details about the configured catalog source, or an
// error when it cannot serve
type ReadinessCheck func(ctx context.Context) (map[string]interface{}, error)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	ready  ReadinessCheck
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(ready ReadinessCheck, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{ready: ready, logger: logger}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": utils.NowRFC3339(),
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{"status": "ready"}
	if h.ready == nil {
		writeStatus(w, http.StatusOK, body)
		return
	}

	details, err := h.ready(r.Context())
	if err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		writeStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
		})
		return
	}

	for k, v := range details {
		body[k] = v
	}
	writeStatus(w, http.StatusOK, body)
}

func writeStatus(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
