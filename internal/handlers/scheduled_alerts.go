package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"scheduler-service/internal/database"
	"scheduler-service/internal/scanner"
)

// CreateScheduledAlertRequest represents a request to create a scheduled alert.
type CreateScheduledAlertRequest struct {
	OrgID          string               `json:"organization_id"`
	OrgName        string               `json:"organization_name"`
	GroupID        *string              `json:"group_id,omitempty"`
	GroupName      *string              `json:"group_name,omitempty"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Type           string               `json:"type"`
	Severity       string               `json:"severity"`
	Location       *database.Location   `json:"location,omitempty"`
	ImageURLs      []string             `json:"image_urls,omitempty"`
	ScheduledAt    time.Time            `json:"scheduled_at"`
	ExpiresAt      *time.Time           `json:"expires_at,omitempty"`
	IsRecurring    bool                 `json:"is_recurring"`
	Recurrence     *database.Recurrence `json:"recurrence,omitempty"`
	PostedBy       string               `json:"posted_by"`
	PostedByUserID string               `json:"posted_by_user_id"`
}

// DuplicateScheduledAlertRequest represents a request to duplicate a scheduled
// alert onto an explicit list of dates.
type DuplicateScheduledAlertRequest struct {
	AlertID string      `json:"alert_id"`
	Dates   []time.Time `json:"dates"`
}

// CreateScheduledAlert creates a new scheduled alert. If the alert is already
// due (or due within the lookahead window), the pipeline runs for it
// immediately so short-fuse alerts do not wait for the next periodic tick.
func (h *Handlers) CreateScheduledAlert(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req CreateScheduledAlertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !validateAlertFields(w, &req) {
		return
	}

	ctx := r.Context()
	created, err := h.db.CreateScheduledAlert(ctx, alertFromRequest(&req))
	if err != nil {
		slog.Error("Failed to create scheduled alert", "error", err, "organization_id", req.OrgID)
		if strings.Contains(err.Error(), "organization not found") {
			http.Error(w, "Organization not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to create scheduled alert: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.maybeRunForNewAlert(ctx, created)

	writeJSON(w, http.StatusCreated, created)
}

// GetScheduledAlert retrieves a scheduled alert by ID.
func (h *Handlers) GetScheduledAlert(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	alertID, ok := requireQueryParam(w, r, "alert_id")
	if !ok {
		return
	}

	ctx := r.Context()
	alert, err := h.db.GetScheduledAlert(ctx, alertID)
	if err != nil {
		slog.Error("Failed to get scheduled alert", "error", err, "alert_id", alertID)
		http.Error(w, "Scheduled alert not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

// ListScheduledAlerts retrieves all scheduled alerts for an organization.
func (h *Handlers) ListScheduledAlerts(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	orgID, ok := requireQueryParam(w, r, "organization_id")
	if !ok {
		return
	}

	ctx := r.Context()
	alerts, err := h.db.ListScheduledAlerts(ctx, orgID)
	if err != nil {
		slog.Error("Failed to list scheduled alerts", "error", err, "organization_id", orgID)
		http.Error(w, "Failed to list scheduled alerts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, alerts)
}

// DuplicateScheduledAlert creates one sibling scheduled alert per requested
// date, copying everything except the schedule from the source alert.
func (h *Handlers) DuplicateScheduledAlert(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req DuplicateScheduledAlertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.AlertID == "" {
		http.Error(w, "alert_id is required", http.StatusBadRequest)
		return
	}
	if len(req.Dates) == 0 {
		http.Error(w, "dates is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	source, err := h.db.GetScheduledAlert(ctx, req.AlertID)
	if err != nil {
		slog.Error("Failed to get scheduled alert for duplication", "error", err, "alert_id", req.AlertID)
		http.Error(w, "Scheduled alert not found", http.StatusNotFound)
		return
	}

	created := make([]*database.ScheduledAlert, 0, len(req.Dates))
	for _, date := range req.Dates {
		sibling, err := h.db.CreateScheduledAlert(ctx, duplicateAt(source, date))
		if err != nil {
			slog.Error("Failed to duplicate scheduled alert",
				"error", err,
				"alert_id", req.AlertID,
				"date", date,
			)
			http.Error(w, "Failed to duplicate scheduled alert: "+err.Error(), http.StatusInternalServerError)
			return
		}
		created = append(created, sibling)
		h.maybeRunForNewAlert(ctx, sibling)
	}

	writeJSON(w, http.StatusCreated, created)
}

// maybeRunForNewAlert runs the pipeline for a freshly created alert whose
// scheduled time falls inside the lookahead window. The run is synchronous
// and its outcome never affects the create response.
func (h *Handlers) maybeRunForNewAlert(ctx context.Context, alert *database.ScheduledAlert) {
	if alert.ScheduledAt.After(h.now().Add(h.lookahead)) {
		return
	}

	slog.Info("New scheduled alert is due, triggering immediate run",
		"alert_id", alert.AlertID,
		"scheduled_at", alert.ScheduledAt,
	)
	if _, err := h.pipeline.Run(ctx, TriggerCreation, scanner.Alert(alert.AlertID)); err != nil {
		slog.Error("Creation-triggered pipeline run failed",
			"alert_id", alert.AlertID,
			"error", err,
		)
		// Continue - the alert was created, the periodic runner will pick it up
	}
}

// alertFromRequest maps a create request onto a ScheduledAlert row.
func alertFromRequest(req *CreateScheduledAlertRequest) *database.ScheduledAlert {
	return &database.ScheduledAlert{
		OrgID:          req.OrgID,
		OrgName:        req.OrgName,
		GroupID:        req.GroupID,
		GroupName:      req.GroupName,
		Title:          req.Title,
		Description:    req.Description,
		Type:           req.Type,
		Severity:       req.Severity,
		Location:       req.Location,
		ImageURLs:      req.ImageURLs,
		ScheduledAt:    req.ScheduledAt,
		ExpiresAt:      req.ExpiresAt,
		IsRecurring:    req.IsRecurring,
		Recurrence:     req.Recurrence,
		PostedBy:       req.PostedBy,
		PostedByUserID: req.PostedByUserID,
	}
}

// duplicateAt copies a scheduled alert to a new date. A relative expiry is
// preserved by shifting it with the schedule.
func duplicateAt(source *database.ScheduledAlert, date time.Time) *database.ScheduledAlert {
	copied := *source
	copied.AlertID = ""
	copied.ScheduledAt = date
	copied.ProcessedAt = nil
	copied.ProcessedAlertID = nil
	if source.ExpiresAt != nil {
		shifted := date.Add(source.ExpiresAt.Sub(source.ScheduledAt))
		copied.ExpiresAt = &shifted
	}
	return &copied
}
