package handlers

import (
	"log/slog"
	"net/http"

	"scheduler-service/internal/scanner"
)

// RunSchedulerResponse represents the result of a manually triggered run.
type RunSchedulerResponse struct {
	Success         bool     `json:"success"`
	ProcessedCount  int      `json:"processed_count"`
	ProcessedAlerts []string `json:"processed_alerts"`
	Error           string   `json:"error,omitempty"`
}

// RunScheduler triggers an immediate pipeline run across every organization.
// The endpoint takes no filtering; it is "run now", nothing else.
func (h *Handlers) RunScheduler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	ctx := r.Context()
	processed, err := h.pipeline.Run(ctx, TriggerManual, scanner.All())
	if err != nil {
		slog.Error("Manual pipeline run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, RunSchedulerResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	if processed == nil {
		processed = []string{}
	}
	writeJSON(w, http.StatusOK, RunSchedulerResponse{
		Success:         true,
		ProcessedCount:  len(processed),
		ProcessedAlerts: processed,
	})
}
