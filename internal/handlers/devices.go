package handlers

import (
	"log/slog"
	"net/http"
)

// RegisterDeviceRequest represents a request to register a push device token.
type RegisterDeviceRequest struct {
	UserID string `json:"user_id"`
	Token  string `json:"device_token"`
}

// RegisterDevice stores a user's push device token. An empty token clears the
// registration, which removes the user from future fanouts.
func (h *Handlers) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req RegisterDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := h.db.SetDeviceToken(ctx, req.UserID, req.Token); err != nil {
		slog.Error("Failed to register device token", "error", err, "user_id", req.UserID)
		http.Error(w, "Failed to register device token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
