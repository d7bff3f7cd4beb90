package pipeline

import (
	"context"
	"time"

	"scheduler-service/internal/database"
	"scheduler-service/internal/events"
	"scheduler-service/internal/scanner"
)

// Store defines the alert store operations the pipeline needs. It extends the
// scanner's read surface with the claim and materialization writes.
// This allows the processor to be tested without a real database.
type Store interface {
	scanner.Store

	// ClaimScheduledAlert atomically transitions a scheduled alert from
	// pending to processed. Returns claimed = false when a concurrent caller
	// won the claim; that is not an error.
	ClaimScheduledAlert(ctx context.Context, alertID string, now time.Time) (bool, error)

	// InsertActiveAlert writes a materialized alert to the global feed and
	// returns the generated id.
	InsertActiveAlert(ctx context.Context, alert *database.ActiveAlert) (string, error)

	// InsertOrgActiveAlert writes the materialized alert to the
	// per-organization feed.
	InsertOrgActiveAlert(ctx context.Context, alertID string, alert *database.ActiveAlert) error

	// SetProcessedAlertID records the back-reference from a claimed scheduled
	// alert to its materialized active alert.
	SetProcessedAlertID(ctx context.Context, alertID, processedAlertID string) error

	// CreateScheduledAlert inserts a new scheduled alert. The pipeline uses
	// it to create the next occurrence of a recurring alert.
	CreateScheduledAlert(ctx context.Context, alert *database.ScheduledAlert) (*database.ScheduledAlert, error)
}

// Notifier delivers the push notification for a materialized alert.
type Notifier interface {
	Notify(ctx context.Context, alertID string, alert *database.ActiveAlert) error
}

// RunPublisher broadcasts the run-completed event after a non-empty run.
type RunPublisher interface {
	Publish(ctx context.Context, completed *events.RunCompleted) error
}

// MetricsRecorder defines the interface for recording pipeline metrics.
// This uses the null object pattern - a no-op implementation avoids nil checks.
type MetricsRecorder interface {
	RecordRunStarted(trigger string)
	RecordRunFailed()
	RecordAlertProcessed()
	RecordClaimRaceLost()
	RecordPushSent()
	RecordPushFailure()
}

// NoOpMetrics is a no-op implementation of MetricsRecorder.
type NoOpMetrics struct{}

// Ensure NoOpMetrics implements MetricsRecorder.
var _ MetricsRecorder = (*NoOpMetrics)(nil)

func (NoOpMetrics) RecordRunStarted(_ string) {}
func (NoOpMetrics) RecordRunFailed()          {}
func (NoOpMetrics) RecordAlertProcessed()     {}
func (NoOpMetrics) RecordClaimRaceLost()      {}
func (NoOpMetrics) RecordPushSent()           {}
func (NoOpMetrics) RecordPushFailure()        {}
