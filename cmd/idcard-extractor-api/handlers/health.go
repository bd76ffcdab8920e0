package handlers

import (
	"encoding/json"
	"net/http"
)

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	service string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{service: service}
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeStatic(w, map[string]string{"message": "ID Extraction API is running!"})
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeStatic(w, map[string]string{"status": "healthy", "service": h.service})
}

// Ready handles GET /ready. The pipeline keeps no connections, so a running
// process is ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeStatic(w, map[string]string{"status": "ready"})
}

func writeStatic(w http.ResponseWriter, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
