package pipeline

import (
	"time"

	"scheduler-service/internal/database"
)

// NextOccurrence computes the scheduled time of the occurrence after the
// given one. Returns ok = false when the recurrence has no next occurrence:
// unknown frequency, or the next time falls past the recurrence end date.
// This is simple periodic repetition, not calendar recurrence semantics.
func NextOccurrence(after time.Time, rec *database.Recurrence) (time.Time, bool) {
	if rec == nil {
		return time.Time{}, false
	}

	interval := rec.Interval
	if interval < 1 {
		interval = 1
	}

	var next time.Time
	switch rec.Frequency {
	case database.FreqDaily:
		next = after.AddDate(0, 0, interval)
	case database.FreqWeekly:
		next = after.AddDate(0, 0, 7*interval)
	case database.FreqMonthly:
		next = after.AddDate(0, interval, 0)
	case database.FreqYearly:
		next = after.AddDate(interval, 0, 0)
	default:
		return time.Time{}, false
	}

	if rec.Until != nil && next.After(*rec.Until) {
		return time.Time{}, false
	}
	return next, true
}

// nextOccurrenceAlert builds the sibling scheduled alert for the next
// occurrence of a recurring alert. Each occurrence is its own row; the
// pipeline never expands a recurrence rule beyond one row ahead.
func nextOccurrenceAlert(alert *database.ScheduledAlert, next time.Time) *database.ScheduledAlert {
	sibling := &database.ScheduledAlert{
		OrgID:          alert.OrgID,
		OrgName:        alert.OrgName,
		GroupID:        alert.GroupID,
		GroupName:      alert.GroupName,
		Title:          alert.Title,
		Description:    alert.Description,
		Type:           alert.Type,
		Severity:       alert.Severity,
		Location:       alert.Location,
		ImageURLs:      alert.ImageURLs,
		ScheduledAt:    next,
		IsRecurring:    true,
		Recurrence:     alert.Recurrence,
		PostedBy:       alert.PostedBy,
		PostedByUserID: alert.PostedByUserID,
	}
	if alert.ExpiresAt != nil {
		// Keep the expiry the same distance from the scheduled time.
		shifted := alert.ExpiresAt.Add(next.Sub(alert.ScheduledAt))
		sibling.ExpiresAt = &shifted
	}
	return sibling
}
