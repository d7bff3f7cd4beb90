// Package pipeline turns due scheduled alerts into delivered active alerts.
// Every trigger adapter funnels into Processor.Run; correctness under
// concurrent triggers rests entirely on the store's atomic claim.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scheduler-service/internal/database"
	"scheduler-service/internal/events"
	"scheduler-service/internal/scanner"
)

const (
	// SchemaVersion of the run-completed event payload.
	SchemaVersion = 1
)

// Processor orchestrates the scan, claim, materialize, and fanout steps of
// one pipeline run.
type Processor struct {
	store     Store
	scanner   *scanner.Scanner
	notifier  Notifier
	publisher RunPublisher
	metrics   MetricsRecorder
	now       func() time.Time
}

// Option is a functional option for configuring a Processor.
type Option func(*Processor)

// WithPublisher sets the run-completed event publisher.
func WithPublisher(p RunPublisher) Option {
	return func(proc *Processor) {
		proc.publisher = p
	}
}

// WithMetrics sets a custom metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(proc *Processor) {
		if m != nil {
			proc.metrics = m
		}
	}
}

// NewProcessor creates a pipeline processor. The publisher is optional; runs
// without one simply skip the run-completed broadcast.
func NewProcessor(store Store, notifier Notifier, opts ...Option) *Processor {
	p := &Processor{
		store:    store,
		scanner:  scanner.NewScanner(store),
		notifier: notifier,
		metrics:  NoOpMetrics{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one pipeline run: scan for due alerts in scope, claim each one,
// materialize the claimed ones, and fan out notifications. It returns the
// titles of the alerts this run processed, in processing order.
//
// Errors are returned only for run-level failures (the scan itself failed).
// A claim lost to a concurrent run is expected and silent; the other run
// reports that alert in its own result.
func (p *Processor) Run(ctx context.Context, trigger string, scope scanner.Scope) ([]string, error) {
	p.metrics.RecordRunStarted(trigger)

	due, err := p.scanner.Scan(ctx, scope)
	if err != nil {
		p.metrics.RecordRunFailed()
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	if len(due) == 0 {
		slog.Debug("No due scheduled alerts", "trigger", trigger, "scope", scope.String())
		return nil, nil
	}

	slog.Info("Processing due scheduled alerts",
		"trigger", trigger,
		"scope", scope.String(),
		"due", len(due),
	)

	processed := make([]string, 0, len(due))
	for _, alert := range due {
		if title, ok := p.processOne(ctx, alert); ok {
			processed = append(processed, title)
		}
	}

	if len(processed) > 0 {
		p.publishRunCompleted(ctx, trigger, scope, processed)
	}

	return processed, nil
}

// processOne claims and materializes a single due alert. It returns the alert
// title and true when this run performed the materialization, and false when
// the claim was lost or the materialization could not start.
func (p *Processor) processOne(ctx context.Context, alert *database.ScheduledAlert) (string, bool) {
	now := p.now().UTC()

	claimed, err := p.store.ClaimScheduledAlert(ctx, alert.AlertID, now)
	if err != nil {
		slog.Error("Failed to claim scheduled alert",
			"alert_id", alert.AlertID,
			"org_id", alert.OrgID,
			"error", err,
		)
		return "", false
	}
	if !claimed {
		// Another run got there first. Expected under redundant triggers.
		p.metrics.RecordClaimRaceLost()
		slog.Debug("Claim lost to concurrent run, skipping",
			"alert_id", alert.AlertID,
		)
		return "", false
	}

	active := buildActiveAlert(alert, now)

	activeID, err := p.store.InsertActiveAlert(ctx, active)
	if err != nil {
		// The claim already flipped is_active, so this alert will not be
		// retried. Losing the materialization is judged better than risking
		// a duplicate delivery on re-attempt.
		slog.Error("Claimed alert could not be materialized",
			"alert_id", alert.AlertID,
			"org_id", alert.OrgID,
			"error", err,
		)
		return "", false
	}

	if err := p.store.InsertOrgActiveAlert(ctx, activeID, active); err != nil {
		slog.Warn("Materialized alert missing from organization feed",
			"alert_id", alert.AlertID,
			"active_alert_id", activeID,
			"org_id", alert.OrgID,
			"error", err,
		)
	}

	if err := p.store.SetProcessedAlertID(ctx, alert.AlertID, activeID); err != nil {
		slog.Warn("Failed to record processed alert back-reference",
			"alert_id", alert.AlertID,
			"active_alert_id", activeID,
			"error", err,
		)
	}

	p.scheduleNextOccurrence(ctx, alert)

	if err := p.notifier.Notify(ctx, activeID, active); err != nil {
		p.metrics.RecordPushFailure()
		slog.Warn("Push delivery failed, alert remains processed",
			"alert_id", alert.AlertID,
			"active_alert_id", activeID,
			"error", err,
		)
	} else {
		p.metrics.RecordPushSent()
	}

	p.metrics.RecordAlertProcessed()

	slog.Info("Scheduled alert processed",
		"alert_id", alert.AlertID,
		"active_alert_id", activeID,
		"org_id", alert.OrgID,
		"title", alert.Title,
	)

	return alert.Title, true
}

// scheduleNextOccurrence creates the sibling row for a recurring alert.
// A failure here is logged only; the current occurrence is already processed.
func (p *Processor) scheduleNextOccurrence(ctx context.Context, alert *database.ScheduledAlert) {
	if !alert.IsRecurring || alert.Recurrence == nil {
		return
	}

	next, ok := NextOccurrence(alert.ScheduledAt, alert.Recurrence)
	if !ok {
		slog.Info("Recurring alert reached its end, no next occurrence",
			"alert_id", alert.AlertID,
		)
		return
	}

	sibling, err := p.store.CreateScheduledAlert(ctx, nextOccurrenceAlert(alert, next))
	if err != nil {
		slog.Warn("Failed to schedule next occurrence of recurring alert",
			"alert_id", alert.AlertID,
			"next", next,
			"error", err,
		)
		return
	}

	slog.Info("Scheduled next occurrence of recurring alert",
		"alert_id", alert.AlertID,
		"next_alert_id", sibling.AlertID,
		"next", next,
	)
}

// publishRunCompleted broadcasts the run-completed event. Publish failures
// are logged only; the run's work is already durable.
func (p *Processor) publishRunCompleted(ctx context.Context, trigger string, scope scanner.Scope, processed []string) {
	if p.publisher == nil {
		return
	}

	now := p.now().UTC()
	completed := &events.RunCompleted{
		RunID:           fmt.Sprintf("%s-%d", trigger, now.UnixNano()),
		Scope:           scope.String(),
		ProcessedCount:  len(processed),
		ProcessedAlerts: processed,
		CompletedAt:     now.Unix(),
		SchemaVersion:   SchemaVersion,
	}

	if err := p.publisher.Publish(ctx, completed); err != nil {
		slog.Warn("Failed to publish run completed event",
			"run_id", completed.RunID,
			"error", err,
		)
	}
}

// buildActiveAlert maps a claimed scheduled alert onto its materialized form.
// Missing optional fields keep their null/empty defaults.
func buildActiveAlert(alert *database.ScheduledAlert, processedAt time.Time) *database.ActiveAlert {
	imageURLs := alert.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return &database.ActiveAlert{
		OrgID:                    alert.OrgID,
		OrgName:                  alert.OrgName,
		GroupID:                  alert.GroupID,
		GroupName:                alert.GroupName,
		Title:                    alert.Title,
		Description:              alert.Description,
		Type:                     alert.Type,
		Severity:                 alert.Severity,
		Location:                 alert.Location,
		ImageURLs:                imageURLs,
		ExpiresAt:                alert.ExpiresAt,
		Source:                   database.SourceScheduled,
		OriginalScheduledAlertID: alert.AlertID,
		ProcessedAt:              processedAt,
		IsActive:                 true,
		PostedBy:                 alert.PostedBy,
		PostedByUserID:           alert.PostedByUserID,
	}
}
