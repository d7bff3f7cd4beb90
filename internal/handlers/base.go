// Package handlers provides HTTP handlers for the scheduler-service API.
package handlers

import (
	"time"
)

// Trigger labels for pipeline runs started from the HTTP surface.
const (
	TriggerManual   = "manual"
	TriggerCreation = "creation"
)

// DefaultCreationLookahead is how far ahead of now a new alert's scheduled
// time may be and still trigger an immediate pipeline run on creation.
const DefaultCreationLookahead = time.Minute

// Handlers wraps dependencies for HTTP handlers.
type Handlers struct {
	db        Repository
	pipeline  PipelineRunner
	lookahead time.Duration
	now       func() time.Time
}

// Option is a functional option for configuring Handlers.
type Option func(*Handlers)

// WithCreationLookahead sets the creation-hook lookahead window.
func WithCreationLookahead(d time.Duration) Option {
	return func(h *Handlers) {
		if d >= 0 {
			h.lookahead = d
		}
	}
}

// NewHandlers creates a new handlers instance.
func NewHandlers(db Repository, pipe PipelineRunner, opts ...Option) *Handlers {
	h := &Handlers{
		db:        db,
		pipeline:  pipe,
		lookahead: DefaultCreationLookahead,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
