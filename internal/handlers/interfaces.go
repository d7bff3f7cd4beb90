// Package handlers provides HTTP handlers for the scheduler-service API.
package handlers

import (
	"context"

	"scheduler-service/internal/database"
	"scheduler-service/internal/scanner"
)

// Repository defines the interface for database operations.
// This allows handlers to be tested without a real database.
type Repository interface {
	CreateScheduledAlert(ctx context.Context, alert *database.ScheduledAlert) (*database.ScheduledAlert, error)
	GetScheduledAlert(ctx context.Context, alertID string) (*database.ScheduledAlert, error)
	ListScheduledAlerts(ctx context.Context, orgID string) ([]*database.ScheduledAlert, error)
	SetDeviceToken(ctx context.Context, userID, token string) error
}

// PipelineRunner defines the interface for triggering pipeline runs.
// This allows handlers to be tested without the full processor.
type PipelineRunner interface {
	Run(ctx context.Context, trigger string, scope scanner.Scope) ([]string, error)
}
