package database

import (
	"context"
	"fmt"
)

// ListOrganizations retrieves all organizations.
func (db *DB) ListOrganizations(ctx context.Context) ([]*Organization, error) {
	query := `
		SELECT org_id, name, created_at
		FROM organizations
		ORDER BY created_at ASC
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*Organization
	for rows.Next() {
		var org Organization
		if err := rows.Scan(&org.OrgID, &org.Name, &org.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, &org)
	}
	return orgs, rows.Err()
}
