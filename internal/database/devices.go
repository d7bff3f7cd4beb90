package database

import (
	"context"
	"fmt"
)

// ListDeviceTokens retrieves every user's device token. Users without a
// registered token come back with an empty string; callers filter those out.
func (db *DB) ListDeviceTokens(ctx context.Context) ([]DeviceToken, error) {
	query := `
		SELECT user_id, COALESCE(device_token, '')
		FROM users
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []DeviceToken
	for rows.Next() {
		var token DeviceToken
		if err := rows.Scan(&token.UserID, &token.Token); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// SetDeviceToken overwrites a user's device token. Tokens have no history;
// the latest refresh wins.
func (db *DB) SetDeviceToken(ctx context.Context, userID, token string) error {
	query := `
		UPDATE users
		SET device_token = $2
		WHERE user_id = $1
	`
	result, err := db.conn.ExecContext(ctx, query, userID, token)
	if err != nil {
		return fmt.Errorf("failed to set device token: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}
