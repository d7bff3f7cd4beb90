// Package router provides HTTP routing configuration for the scheduler-service API.
// It sets up routes and applies middleware like CORS and request metrics.
package router

import (
	"net/http"

	"scheduler-service/internal/handlers"
	"scheduler-service/internal/metrics"
)

// Router wraps the HTTP mux and provides route configuration.
type Router struct {
	mux       *http.ServeMux
	handlers  *handlers.Handlers
	collector *metrics.Collector
}

// NewRouter creates a new router with all routes configured.
// The metrics collector may be nil, in which case request metrics are skipped.
func NewRouter(h *handlers.Handlers, collector *metrics.Collector) *Router {
	r := &Router{
		mux:       http.NewServeMux(),
		handlers:  h,
		collector: collector,
	}
	r.setupRoutes()
	return r
}

// setupRoutes configures all HTTP routes for the API.
func (r *Router) setupRoutes() {
	// Scheduled alert endpoints
	r.mux.HandleFunc("/api/v1/scheduled-alerts", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPost:
			r.handlers.CreateScheduledAlert(w, req)
		case http.MethodGet:
			if req.URL.Query().Get("alert_id") != "" {
				r.handlers.GetScheduledAlert(w, req)
			} else {
				r.handlers.ListScheduledAlerts(w, req)
			}
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	r.mux.HandleFunc("/api/v1/scheduled-alerts/duplicate", func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodPost {
			r.handlers.DuplicateScheduledAlert(w, req)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Manual trigger endpoint
	r.mux.HandleFunc("/api/v1/scheduler/run", func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodPost {
			r.handlers.RunScheduler(w, req)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Device token registration
	r.mux.HandleFunc("/api/v1/devices", func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodPost {
			r.handlers.RegisterDevice(w, req)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Health check endpoint
	r.mux.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Handler returns the HTTP handler with middleware applied.
func (r *Router) Handler() http.Handler {
	return corsMiddleware(metricsMiddleware(r.collector)(r.mux))
}
