package database

import (
	"time"
)

// Severity levels for alerts, ordered from least to most urgent.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// ValidSeverities maps every accepted severity value.
var ValidSeverities = map[string]bool{
	SeverityLow:      true,
	SeverityMedium:   true,
	SeverityHigh:     true,
	SeverityCritical: true,
}

// Recurrence frequencies for scheduled alerts.
const (
	FreqDaily   = "daily"
	FreqWeekly  = "weekly"
	FreqMonthly = "monthly"
	FreqYearly  = "yearly"
)

// ValidFrequencies maps every accepted recurrence frequency.
var ValidFrequencies = map[string]bool{
	FreqDaily:   true,
	FreqWeekly:  true,
	FreqMonthly: true,
	FreqYearly:  true,
}

// SourceScheduled marks active alerts materialized from a scheduled alert.
const SourceScheduled = "scheduled"

// Organization represents a tenant whose scheduled alerts are scanned.
type Organization struct {
	OrgID     string    `json:"organization_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Location is an optional structured address attached to an alert.
// Stored as JSONB; nil means no location.
type Location struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// Recurrence describes simple periodic repetition of a scheduled alert.
// Interval is in units of Frequency and is always >= 1. Until is optional.
type Recurrence struct {
	Frequency string     `json:"frequency"`
	Interval  int        `json:"interval"`
	Until     *time.Time `json:"until,omitempty"`
}

// ScheduledAlert is a time-deferred alert definition awaiting materialization.
// IsActive transitions true to false exactly once, via ClaimScheduledAlert.
type ScheduledAlert struct {
	AlertID     string    `json:"alert_id"`
	OrgID       string    `json:"organization_id"`
	OrgName     string    `json:"organization_name"`
	GroupID     *string   `json:"group_id,omitempty"`
	GroupName   *string   `json:"group_name,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	Location    *Location `json:"location,omitempty"`
	ImageURLs   []string  `json:"image_urls"`

	ScheduledAt time.Time   `json:"scheduled_at"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
	IsRecurring bool        `json:"is_recurring"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`

	IsActive         bool       `json:"is_active"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	ProcessedAlertID *string    `json:"processed_alert_id,omitempty"`

	PostedBy       string    `json:"posted_by"`
	PostedByUserID string    `json:"posted_by_user_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ActiveAlert is the visible alert record produced from a claimed
// ScheduledAlert. It is written to both the global feed and the
// per-organization feed; the two writes are not transactional.
type ActiveAlert struct {
	AlertID                  string     `json:"alert_id"`
	OrgID                    string     `json:"organization_id"`
	OrgName                  string     `json:"organization_name"`
	GroupID                  *string    `json:"group_id,omitempty"`
	GroupName                *string    `json:"group_name,omitempty"`
	Title                    string     `json:"title"`
	Description              string     `json:"description"`
	Type                     string     `json:"type"`
	Severity                 string     `json:"severity"`
	Location                 *Location  `json:"location,omitempty"`
	ImageURLs                []string   `json:"image_urls"`
	ExpiresAt                *time.Time `json:"expires_at,omitempty"`
	Source                   string     `json:"source"`
	OriginalScheduledAlertID string     `json:"original_scheduled_alert_id"`
	ProcessedAt              time.Time  `json:"processed_at"`
	IsActive                 bool       `json:"is_active"`
	PostedBy                 string     `json:"posted_by"`
	PostedByUserID           string     `json:"posted_by_user_id"`
	CreatedAt                time.Time  `json:"created_at"`
}

// DeviceToken is a user's push delivery token. Empty means unregistered.
type DeviceToken struct {
	UserID string `json:"user_id"`
	Token  string `json:"device_token"`
}
