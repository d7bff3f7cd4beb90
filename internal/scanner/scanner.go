// Package scanner finds scheduled alerts that are due for processing.
// A scan can cover every organization, a single organization, or a single
// already-known alert.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"scheduler-service/internal/database"
)

// Store defines the read operations the scanner needs from the alert store.
type Store interface {
	ListOrganizations(ctx context.Context) ([]*database.Organization, error)
	ListDueScheduledAlerts(ctx context.Context, orgID string, now time.Time) ([]*database.ScheduledAlert, error)
	GetScheduledAlert(ctx context.Context, alertID string) (*database.ScheduledAlert, error)
}

// Scope limits a scan to one organization or one known alert.
// The zero value means "all organizations".
type Scope struct {
	OrgID   string
	AlertID string
}

// All returns the all-organizations scope.
func All() Scope { return Scope{} }

// Org returns a scope limited to one organization.
func Org(orgID string) Scope { return Scope{OrgID: orgID} }

// Alert returns a scope limited to one already-known alert.
func Alert(alertID string) Scope { return Scope{AlertID: alertID} }

// String describes the scope for logging and run events.
func (s Scope) String() string {
	switch {
	case s.AlertID != "":
		return "alert:" + s.AlertID
	case s.OrgID != "":
		return "org:" + s.OrgID
	default:
		return "all"
	}
}

// Scanner queries the alert store for due scheduled alerts.
type Scanner struct {
	store Store
	now   func() time.Time
}

// NewScanner creates a scanner backed by the given store.
func NewScanner(store Store) *Scanner {
	return &Scanner{
		store: store,
		now:   time.Now,
	}
}

// Scan returns every scheduled alert in scope that is still pending and whose
// scheduled time has elapsed. A failure to read one organization is logged
// and that organization is skipped; it never aborts the rest of the scan.
func (s *Scanner) Scan(ctx context.Context, scope Scope) ([]*database.ScheduledAlert, error) {
	now := s.now().UTC()

	if scope.AlertID != "" {
		alert, err := s.store.GetScheduledAlert(ctx, scope.AlertID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert %s: %w", scope.AlertID, err)
		}
		if !s.isDue(alert, now) {
			return nil, nil
		}
		return []*database.ScheduledAlert{alert}, nil
	}

	if scope.OrgID != "" {
		return s.scanOrg(ctx, scope.OrgID, now)
	}

	orgs, err := s.store.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	// Organizations are scanned concurrently; each scan is independent and a
	// failed organization only drops its own results.
	var mu sync.Mutex
	var wg sync.WaitGroup
	var due []*database.ScheduledAlert

	for _, org := range orgs {
		wg.Add(1)
		go func(org *database.Organization) {
			defer wg.Done()
			alerts, err := s.scanOrg(ctx, org.OrgID, now)
			if err != nil {
				slog.Warn("Skipping organization after scan failure",
					"org_id", org.OrgID,
					"error", err,
				)
				return
			}
			if len(alerts) == 0 {
				return
			}
			mu.Lock()
			due = append(due, alerts...)
			mu.Unlock()
		}(org)
	}
	wg.Wait()

	return due, nil
}

// scanOrg queries one organization's due alerts and re-checks the scheduled
// time client-side. The store query already filters on scheduled_at, but the
// store's clock is not this process's clock, so the due check is repeated
// here before anything gets claimed.
func (s *Scanner) scanOrg(ctx context.Context, orgID string, now time.Time) ([]*database.ScheduledAlert, error) {
	alerts, err := s.store.ListDueScheduledAlerts(ctx, orgID, now)
	if err != nil {
		return nil, err
	}

	due := make([]*database.ScheduledAlert, 0, len(alerts))
	for _, alert := range alerts {
		if s.isDue(alert, now) {
			due = append(due, alert)
		}
	}
	return due, nil
}

// isDue reports whether an alert is pending and its scheduled time elapsed.
func (s *Scanner) isDue(alert *database.ScheduledAlert, now time.Time) bool {
	return alert.IsActive && !alert.ScheduledAt.After(now)
}
