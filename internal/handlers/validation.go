package handlers

import (
	"encoding/json"
	"net/http"

	"scheduler-service/internal/database"
)

// Keep validation logic centralized to avoid divergence across endpoints.

func isValidSeverity(severity string) bool {
	return database.ValidSeverities[severity]
}

func isValidFrequency(frequency string) bool {
	return database.ValidFrequencies[frequency]
}

// validateAlertFields checks the required scheduled-alert fields and enums.
// Returns true if valid, false otherwise (and writes error response).
func validateAlertFields(w http.ResponseWriter, req *CreateScheduledAlertRequest) bool {
	if req.OrgID == "" {
		http.Error(w, "organization_id is required", http.StatusBadRequest)
		return false
	}
	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return false
	}
	if req.ScheduledAt.IsZero() {
		http.Error(w, "scheduled_at is required", http.StatusBadRequest)
		return false
	}
	if !isValidSeverity(req.Severity) {
		http.Error(w, "severity must be one of: low, medium, high, critical", http.StatusBadRequest)
		return false
	}
	if req.IsRecurring {
		if req.Recurrence == nil {
			http.Error(w, "recurrence is required for recurring alerts", http.StatusBadRequest)
			return false
		}
		if !isValidFrequency(req.Recurrence.Frequency) {
			http.Error(w, "recurrence frequency must be one of: daily, weekly, monthly, yearly", http.StatusBadRequest)
			return false
		}
		if req.Recurrence.Interval < 0 {
			http.Error(w, "recurrence interval cannot be negative", http.StatusBadRequest)
			return false
		}
	}
	return true
}

// HTTP helper functions to reduce duplication across handlers.

// requireMethod validates that the request method matches the expected method.
// Returns true if valid, false otherwise (and writes error response).
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// decodeJSON decodes the request body as JSON into the provided value.
// Returns true on success, false on error (and writes error response).
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeJSON writes the value as JSON with appropriate headers.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// requireQueryParam extracts a query parameter and validates it's not empty.
// Returns the value and true if valid, empty string and false otherwise (and writes error response).
func requireQueryParam(w http.ResponseWriter, r *http.Request, paramName string) (string, bool) {
	value := r.URL.Query().Get(paramName)
	if value == "" {
		http.Error(w, paramName+" query parameter is required", http.StatusBadRequest)
		return "", false
	}
	return value, true
}
