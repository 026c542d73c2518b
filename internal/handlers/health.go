package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/benvon/taskify/internal/storage"
)

// HealthChecker handles health check requests
type HealthChecker struct {
	store storage.Store
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(store storage.Store) *HealthChecker {
	return &HealthChecker{store: store}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string)
		if err := h.checkStore(r.Context()); err != nil {
			response.Status = "unhealthy"
			checks["store"] = "unhealthy: " + err.Error()
		} else {
			checks["store"] = "healthy"
		}
		response.Checks = checks
	}

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// checkStore verifies the persistence substrate answers reads
func (h *HealthChecker) checkStore(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, _, err := h.store.Get(ctx, storage.KeyTasks)
	return err
}
