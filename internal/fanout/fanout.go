// Package fanout delivers a push notification for a newly materialized alert
// to every user with a registered device token.
//
// Delivery is an unfiltered broadcast: every registered token receives the
// push, regardless of which organization or group the alert targets. That
// matches the product's current behavior; restricting delivery to followers
// of the alert's organization would change observable semantics and is
// tracked as an open question, not silently fixed here.
package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scheduler-service/internal/database"
	"scheduler-service/internal/push"
)

// TokenStore defines the device registry read the fanout needs.
type TokenStore interface {
	ListDeviceTokens(ctx context.Context) ([]database.DeviceToken, error)
}

// Gateway defines the multicast send primitive.
type Gateway interface {
	SendMulticast(ctx context.Context, msg *push.Message) (*push.Result, error)
}

// Fanout broadcasts push notifications for materialized alerts.
type Fanout struct {
	tokens  TokenStore
	gateway Gateway
}

// NewFanout creates a fanout backed by the given device registry and gateway.
func NewFanout(tokens TokenStore, gateway Gateway) *Fanout {
	return &Fanout{
		tokens:  tokens,
		gateway: gateway,
	}
}

// Notify sends one multicast push for the alert. Partial delivery failure is
// logged and never retried; it does not affect the alert's processed status.
// A run with no registered tokens sends nothing and is not an error.
func (f *Fanout) Notify(ctx context.Context, alertID string, alert *database.ActiveAlert) error {
	registered, err := f.tokens.ListDeviceTokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to list device tokens: %w", err)
	}

	tokens := make([]string, 0, len(registered))
	for _, t := range registered {
		token := strings.TrimSpace(t.Token)
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}

	if len(tokens) == 0 {
		slog.Info("No registered device tokens, skipping push",
			"alert_id", alertID,
		)
		return nil
	}

	msg := BuildPushMessage(alertID, alert)
	msg.Tokens = tokens

	result, err := f.gateway.SendMulticast(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send multicast push: %w", err)
	}

	if result.FailureCount > 0 {
		slog.Warn("Push gateway reported partial delivery failure",
			"alert_id", alertID,
			"success", result.SuccessCount,
			"failure", result.FailureCount,
		)
	} else {
		slog.Info("Push notification delivered",
			"alert_id", alertID,
			"tokens", len(tokens),
			"success", result.SuccessCount,
		)
	}

	return nil
}

// BuildPushMessage builds the notification title/body and data payload from
// a materialized alert. Tokens are filled in by the caller.
func BuildPushMessage(alertID string, alert *database.ActiveAlert) *push.Message {
	return &push.Message{
		Title: alert.Title,
		Body:  alert.Description,
		Data: map[string]string{
			"alert_id":        alertID,
			"organization_id": alert.OrgID,
			"type":            alert.Type,
			"severity":        alert.Severity,
		},
	}
}
