// Package router provides HTTP routing configuration for the scheduler-service API.
package router

import (
	"net/http"
	"time"

	"scheduler-service/internal/handlers"
	"scheduler-service/internal/metrics"
)

// NewServer creates a new HTTP server with the router configured.
func NewServer(port string, h *handlers.Handlers, collector *metrics.Collector) *http.Server {
	router := NewRouter(h, collector)
	return &http.Server{
		Addr:        ":" + port,
		Handler:     router.Handler(),
		ReadTimeout: 15 * time.Second,
		// Manual trigger runs the pipeline synchronously, so the write
		// timeout must cover a full run.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
