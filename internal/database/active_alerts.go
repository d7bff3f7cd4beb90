package database

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

// InsertActiveAlert writes a materialized alert to the global feed and
// returns the generated alert id.
func (db *DB) InsertActiveAlert(ctx context.Context, alert *ActiveAlert) (string, error) {
	query := `
		INSERT INTO active_alerts (org_id, org_name, group_id, group_name,
			title, description, alert_type, severity, location, image_urls, expires_at,
			source, original_scheduled_alert_id, processed_at, is_active,
			posted_by, posted_by_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, TRUE, $15, $16, NOW())
		RETURNING alert_id
	`
	locationValue, err := marshalLocation(alert.Location)
	if err != nil {
		return "", err
	}

	imageURLs := alert.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}

	var alertID string
	err = db.conn.QueryRowContext(ctx, query,
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
		alert.ExpiresAt,
		alert.Source,
		alert.OriginalScheduledAlertID,
		alert.ProcessedAt,
		alert.PostedBy,
		alert.PostedByUserID,
	).Scan(&alertID)
	if err != nil {
		return "", fmt.Errorf("failed to insert active alert: %w", err)
	}
	return alertID, nil
}

// InsertOrgActiveAlert writes the same materialized alert to the
// per-organization feed. This duplicates the global write on purpose: the two
// feeds serve different read paths and the writes are not transactional.
func (db *DB) InsertOrgActiveAlert(ctx context.Context, alertID string, alert *ActiveAlert) error {
	query := `
		INSERT INTO org_active_alerts (alert_id, org_id, org_name, group_id, group_name,
			title, description, alert_type, severity, location, image_urls, expires_at,
			source, original_scheduled_alert_id, processed_at, is_active,
			posted_by, posted_by_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, TRUE, $16, $17, NOW())
	`
	locationValue, err := marshalLocation(alert.Location)
	if err != nil {
		return err
	}

	imageURLs := alert.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}

	_, err = db.conn.ExecContext(ctx, query,
		alertID,
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
		alert.ExpiresAt,
		alert.Source,
		alert.OriginalScheduledAlertID,
		alert.ProcessedAt,
		alert.PostedBy,
		alert.PostedByUserID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert org active alert: %w", err)
	}
	return nil
}
