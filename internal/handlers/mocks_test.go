// Package handlers provides test mocks for handler dependencies.
package handlers

import (
	"context"
	"sync"
	"time"

	"scheduler-service/internal/database"
	"scheduler-service/internal/scanner"
)

// mockRepository implements Repository interface for testing.
type mockRepository struct {
	// Callbacks for each method (set these to control behavior)
	CreateScheduledAlertFn func(ctx context.Context, alert *database.ScheduledAlert) (*database.ScheduledAlert, error)
	GetScheduledAlertFn    func(ctx context.Context, alertID string) (*database.ScheduledAlert, error)
	ListScheduledAlertsFn  func(ctx context.Context, orgID string) ([]*database.ScheduledAlert, error)
	SetDeviceTokenFn       func(ctx context.Context, userID, token string) error

	mu      sync.Mutex
	created []*database.ScheduledAlert
}

func (m *mockRepository) CreateScheduledAlert(ctx context.Context, alert *database.ScheduledAlert) (*database.ScheduledAlert, error) {
	if m.CreateScheduledAlertFn != nil {
		return m.CreateScheduledAlertFn(ctx, alert)
	}
	copied := *alert
	copied.AlertID = "sched-1"
	copied.IsActive = true
	m.mu.Lock()
	m.created = append(m.created, &copied)
	m.mu.Unlock()
	return &copied, nil
}

func (m *mockRepository) GetScheduledAlert(ctx context.Context, alertID string) (*database.ScheduledAlert, error) {
	if m.GetScheduledAlertFn != nil {
		return m.GetScheduledAlertFn(ctx, alertID)
	}
	return &database.ScheduledAlert{
		AlertID:     alertID,
		OrgID:       "org-1",
		Title:       "Test alert",
		Severity:    database.SeverityMedium,
		ScheduledAt: time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC),
		IsActive:    true,
	}, nil
}

func (m *mockRepository) ListScheduledAlerts(ctx context.Context, orgID string) ([]*database.ScheduledAlert, error) {
	if m.ListScheduledAlertsFn != nil {
		return m.ListScheduledAlertsFn(ctx, orgID)
	}
	return []*database.ScheduledAlert{}, nil
}

func (m *mockRepository) SetDeviceToken(ctx context.Context, userID, token string) error {
	if m.SetDeviceTokenFn != nil {
		return m.SetDeviceTokenFn(ctx, userID, token)
	}
	return nil
}

func (m *mockRepository) createdAlerts() []*database.ScheduledAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created
}

// pipelineCall records one Run invocation on the mock pipeline.
type pipelineCall struct {
	trigger string
	scope   scanner.Scope
}

// mockPipeline implements PipelineRunner interface for testing.
type mockPipeline struct {
	RunFn func(ctx context.Context, trigger string, scope scanner.Scope) ([]string, error)

	mu    sync.Mutex
	calls []pipelineCall
}

func (m *mockPipeline) Run(ctx context.Context, trigger string, scope scanner.Scope) ([]string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, pipelineCall{trigger: trigger, scope: scope})
	m.mu.Unlock()

	if m.RunFn != nil {
		return m.RunFn(ctx, trigger, scope)
	}
	return nil, nil
}

func (m *mockPipeline) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockPipeline) lastCall() pipelineCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}
