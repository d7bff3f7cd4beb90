// Package events defines the event structures for the scheduler service.
package events

// RunCompleted is broadcast after a pipeline run that processed at least one
// scheduled alert, so presentation layers can refresh. Runs that processed
// nothing do not publish this event.
type RunCompleted struct {
	RunID           string   `json:"run_id"`
	Scope           string   `json:"scope"` // all, org:<id>, alert:<id>
	ProcessedCount  int      `json:"processed_count"`
	ProcessedAlerts []string `json:"processed_alerts"`
	CompletedAt     int64    `json:"completed_at"` // Unix timestamp
	SchemaVersion   int      `json:"schema_version"`
}
