package handlers

import (
	"net/http"
	"runtime"
	"time"

	"footage-tracker/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

var startedAt = time.Now()

// HealthResponse contains the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Ready    bool   `json:"ready"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Watching bool   `json:"watching"`
	WatchDir string `json:"watch_directory"`

	// System info
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`

	// Ledger summary
	TotalFiles       int `json:"total_files,omitempty"`
	UnprocessedFiles int `json:"unprocessed_files,omitempty"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	watching := h.watcher != nil && h.watcher.IsHealthy()
	dbOK := h.db.Ping(r.Context()) == nil

	response := HealthResponse{
		Ready:        dbOK,
		Version:      startup.Version,
		Uptime:       time.Since(startedAt).Round(time.Second).String(),
		Watching:     watching,
		WatchDir:     h.watchDir,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if dbOK && watching {
		response.Status = statusHealthy
	} else {
		response.Status = statusDegraded
	}

	// Include a ledger summary when the database is reachable
	if dbOK {
		if stats, err := h.db.CalculateStats(r.Context()); err == nil {
			response.TotalFiles = stats.TotalFiles
			response.UnprocessedFiles = stats.UnprocessedFiles
		}
	}

	if !dbOK {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the database is reachable
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
		return
	}

	writeJSON(w, map[string]string{
		"status": "ready",
	})
}
