package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

const scheduledAlertColumns = `alert_id, org_id, org_name, group_id, group_name,
		title, description, alert_type, severity, location, image_urls,
		scheduled_at, expires_at, is_recurring, recurrence_freq, recurrence_interval, recurrence_until,
		is_active, processed_at, processed_alert_id,
		posted_by, posted_by_user_id, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// unmarshalLocation deserializes the optional location JSON column.
func unmarshalLocation(locationJSON sql.NullString, warnAttrs ...any) *Location {
	if !locationJSON.Valid || locationJSON.String == "" {
		return nil
	}

	var loc Location
	if err := json.Unmarshal([]byte(locationJSON.String), &loc); err != nil {
		slog.Warn("Failed to unmarshal location JSON", append([]any{"error", err}, warnAttrs...)...)
		return nil
	}
	return &loc
}

// marshalLocation serializes an optional location to its JSON column value.
func marshalLocation(loc *Location) (interface{}, error) {
	if loc == nil {
		return nil, nil
	}
	data, err := json.Marshal(loc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal location: %w", err)
	}
	return string(data), nil
}

// scanScheduledAlert reads one scheduled alert row.
func scanScheduledAlert(row rowScanner) (*ScheduledAlert, error) {
	var alert ScheduledAlert
	var groupID, groupName, recurrenceFreq, processedAlertID sql.NullString
	var locationJSON sql.NullString
	var expiresAt, recurrenceUntil, processedAt sql.NullTime
	var recurrenceInterval sql.NullInt64

	if err := row.Scan(
		&alert.AlertID,
		&alert.OrgID,
		&alert.OrgName,
		&groupID,
		&groupName,
		&alert.Title,
		&alert.Description,
		&alert.Type,
		&alert.Severity,
		&locationJSON,
		pq.Array(&alert.ImageURLs),
		&alert.ScheduledAt,
		&expiresAt,
		&alert.IsRecurring,
		&recurrenceFreq,
		&recurrenceInterval,
		&recurrenceUntil,
		&alert.IsActive,
		&processedAt,
		&processedAlertID,
		&alert.PostedBy,
		&alert.PostedByUserID,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if groupID.Valid {
		alert.GroupID = &groupID.String
	}
	if groupName.Valid {
		alert.GroupName = &groupName.String
	}
	if expiresAt.Valid {
		alert.ExpiresAt = &expiresAt.Time
	}
	if processedAt.Valid {
		alert.ProcessedAt = &processedAt.Time
	}
	if processedAlertID.Valid {
		alert.ProcessedAlertID = &processedAlertID.String
	}
	if recurrenceFreq.Valid {
		rec := &Recurrence{
			Frequency: recurrenceFreq.String,
			Interval:  int(recurrenceInterval.Int64),
		}
		if rec.Interval < 1 {
			rec.Interval = 1
		}
		if recurrenceUntil.Valid {
			rec.Until = &recurrenceUntil.Time
		}
		alert.Recurrence = rec
	}
	if alert.ImageURLs == nil {
		alert.ImageURLs = []string{}
	}

	alert.Location = unmarshalLocation(locationJSON, "alert_id", alert.AlertID)

	return &alert, nil
}

// CreateScheduledAlert inserts a new scheduled alert and returns it with its
// generated id and timestamps.
func (db *DB) CreateScheduledAlert(ctx context.Context, alert *ScheduledAlert) (*ScheduledAlert, error) {
	query := `
		INSERT INTO scheduled_alerts (org_id, org_name, group_id, group_name,
			title, description, alert_type, severity, location, image_urls,
			scheduled_at, expires_at, is_recurring, recurrence_freq, recurrence_interval, recurrence_until,
			is_active, posted_by, posted_by_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, TRUE, $17, $18, NOW(), NOW())
		RETURNING ` + scheduledAlertColumns

	locationValue, err := marshalLocation(alert.Location)
	if err != nil {
		return nil, err
	}

	var recurrenceFreq interface{}
	var recurrenceInterval interface{}
	var recurrenceUntil interface{}
	if alert.Recurrence != nil {
		recurrenceFreq = alert.Recurrence.Frequency
		recurrenceInterval = alert.Recurrence.Interval
		if alert.Recurrence.Until != nil {
			recurrenceUntil = *alert.Recurrence.Until
		}
	}

	imageURLs := alert.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}

	row := db.conn.QueryRowContext(ctx, query,
		alert.OrgID,
		alert.OrgName,
		alert.GroupID,
		alert.GroupName,
		alert.Title,
		alert.Description,
		alert.Type,
		alert.Severity,
		locationValue,
		pq.Array(imageURLs),
		alert.ScheduledAt,
		alert.ExpiresAt,
		alert.IsRecurring,
		recurrenceFreq,
		recurrenceInterval,
		recurrenceUntil,
		alert.PostedBy,
		alert.PostedByUserID,
	)

	created, err := scanScheduledAlert(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" { // foreign_key_violation
				return nil, fmt.Errorf("organization not found: %s", alert.OrgID)
			}
		}
		return nil, fmt.Errorf("failed to create scheduled alert: %w", err)
	}
	return created, nil
}

// GetScheduledAlert retrieves a scheduled alert by ID.
func (db *DB) GetScheduledAlert(ctx context.Context, alertID string) (*ScheduledAlert, error) {
	query := `
		SELECT ` + scheduledAlertColumns + `
		FROM scheduled_alerts
		WHERE alert_id = $1
	`
	alert, err := scanScheduledAlert(db.conn.QueryRowContext(ctx, query, alertID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scheduled alert not found: %s", alertID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled alert: %w", err)
	}
	return alert, nil
}

// ListScheduledAlerts retrieves all scheduled alerts for an organization.
func (db *DB) ListScheduledAlerts(ctx context.Context, orgID string) ([]*ScheduledAlert, error) {
	query := `
		SELECT ` + scheduledAlertColumns + `
		FROM scheduled_alerts
		WHERE org_id = $1
		ORDER BY scheduled_at ASC
	`
	rows, err := db.conn.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*ScheduledAlert
	for rows.Next() {
		alert, err := scanScheduledAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// ListDueScheduledAlerts retrieves scheduled alerts for an organization that
// are still pending and whose scheduled time has elapsed. Callers re-check
// scheduled_at against their own clock before claiming.
func (db *DB) ListDueScheduledAlerts(ctx context.Context, orgID string, now time.Time) ([]*ScheduledAlert, error) {
	query := `
		SELECT ` + scheduledAlertColumns + `
		FROM scheduled_alerts
		WHERE org_id = $1 AND is_active = TRUE AND scheduled_at <= $2
		ORDER BY scheduled_at ASC
	`
	rows, err := db.conn.QueryContext(ctx, query, orgID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due scheduled alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*ScheduledAlert
	for rows.Next() {
		alert, err := scanScheduledAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due scheduled alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// ClaimScheduledAlert atomically transitions a scheduled alert from pending
// to processed. The conditional WHERE is_active = TRUE makes the claim safe
// under concurrent callers: exactly one caller observes claimed = true, every
// other caller observes claimed = false. A lost claim is not an error.
func (db *DB) ClaimScheduledAlert(ctx context.Context, alertID string, now time.Time) (bool, error) {
	query := `
		UPDATE scheduled_alerts
		SET is_active = FALSE,
		    processed_at = $2,
		    updated_at = NOW()
		WHERE alert_id = $1 AND is_active = TRUE
	`
	result, err := db.conn.ExecContext(ctx, query, alertID, now)
	if err != nil {
		return false, fmt.Errorf("failed to claim scheduled alert: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// SetProcessedAlertID records the back-reference from a claimed scheduled
// alert to its materialized active alert.
func (db *DB) SetProcessedAlertID(ctx context.Context, alertID, processedAlertID string) error {
	query := `
		UPDATE scheduled_alerts
		SET processed_alert_id = $2,
		    updated_at = NOW()
		WHERE alert_id = $1
	`
	result, err := db.conn.ExecContext(ctx, query, alertID, processedAlertID)
	if err != nil {
		return fmt.Errorf("failed to set processed alert id: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("scheduled alert not found: %s", alertID)
	}
	return nil
}
