package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"scheduler-service/internal/database"
	"scheduler-service/internal/events"
)

// fakeStore is an in-memory Store whose claim is atomic under a mutex, the
// way the real store's conditional UPDATE is atomic in Postgres.
type fakeStore struct {
	mu        sync.Mutex
	orgs      []*database.Organization
	scheduled map[string]*database.ScheduledAlert
	active    map[string]*database.ActiveAlert
	orgActive map[string]*database.ActiveAlert
	nextID    int

	listOrgsErr        error
	failOrgs           map[string]error
	claimErr           error
	insertActiveErr    error
	insertOrgActiveErr error
	setProcessedErr    error
	createErr          error

	claimAttempts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		scheduled: make(map[string]*database.ScheduledAlert),
		active:    make(map[string]*database.ActiveAlert),
		orgActive: make(map[string]*database.ActiveAlert),
		failOrgs:  make(map[string]error),
	}
}

func (f *fakeStore) addOrg(orgID string) {
	f.orgs = append(f.orgs, &database.Organization{OrgID: orgID, Name: "Org " + orgID})
}

func (f *fakeStore) addScheduled(alert *database.ScheduledAlert) {
	f.scheduled[alert.AlertID] = alert
}

func (f *fakeStore) ListOrganizations(ctx context.Context) ([]*database.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listOrgsErr != nil {
		return nil, f.listOrgsErr
	}
	return f.orgs, nil
}

func (f *fakeStore) ListDueScheduledAlerts(ctx context.Context, orgID string, now time.Time) ([]*database.ScheduledAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOrgs[orgID]; err != nil {
		return nil, err
	}
	var due []*database.ScheduledAlert
	for _, alert := range f.scheduled {
		if alert.OrgID == orgID && alert.IsActive && !alert.ScheduledAt.After(now) {
			due = append(due, alert)
		}
	}
	return due, nil
}

func (f *fakeStore) GetScheduledAlert(ctx context.Context, alertID string) (*database.ScheduledAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	alert, ok := f.scheduled[alertID]
	if !ok {
		return nil, fmt.Errorf("scheduled alert not found: %s", alertID)
	}
	return alert, nil
}

func (f *fakeStore) ClaimScheduledAlert(ctx context.Context, alertID string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claimAttempts++
	if f.claimErr != nil {
		return false, f.claimErr
	}
	alert, ok := f.scheduled[alertID]
	if !ok || !alert.IsActive {
		return false, nil
	}
	alert.IsActive = false
	alert.ProcessedAt = &now
	return true, nil
}

func (f *fakeStore) InsertActiveAlert(ctx context.Context, alert *database.ActiveAlert) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertActiveErr != nil {
		return "", f.insertActiveErr
	}
	f.nextID++
	id := fmt.Sprintf("active-%d", f.nextID)
	copied := *alert
	copied.AlertID = id
	f.active[id] = &copied
	return id, nil
}

func (f *fakeStore) InsertOrgActiveAlert(ctx context.Context, alertID string, alert *database.ActiveAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertOrgActiveErr != nil {
		return f.insertOrgActiveErr
	}
	copied := *alert
	copied.AlertID = alertID
	f.orgActive[alertID] = &copied
	return nil
}

func (f *fakeStore) SetProcessedAlertID(ctx context.Context, alertID, processedAlertID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setProcessedErr != nil {
		return f.setProcessedErr
	}
	alert, ok := f.scheduled[alertID]
	if !ok {
		return fmt.Errorf("scheduled alert not found: %s", alertID)
	}
	alert.ProcessedAlertID = &processedAlertID
	return nil
}

func (f *fakeStore) CreateScheduledAlert(ctx context.Context, alert *database.ScheduledAlert) (*database.ScheduledAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	copied := *alert
	copied.AlertID = fmt.Sprintf("sched-%d", f.nextID)
	copied.IsActive = true
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	f.scheduled[copied.AlertID] = &copied
	return &copied, nil
}

// fakeNotifier is a test fake for Notifier.
type fakeNotifier struct {
	mu       sync.Mutex
	notified []string
	err      error
}

func (f *fakeNotifier) Notify(ctx context.Context, alertID string, alert *database.ActiveAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, alertID)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notified)
}

// fakePublisher is a test fake for RunPublisher.
type fakePublisher struct {
	mu        sync.Mutex
	published []*events.RunCompleted
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, completed *events.RunCompleted) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, completed)
	return f.err
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}
