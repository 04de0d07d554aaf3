package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

// ChangeLogEntry is one append-only audit row recording a single
// field-level difference and the actor believed responsible. Immutable
// once written.
type ChangeLogEntry struct {
	ResourceType string
	ResourceID   string
	FieldName    string
	OldValue     string
	NewValue     string
	ChangedBy    string
	AccountID    string
	Region       string
	ChangedAt    string
}

// LogChange appends one change-log row. Runs on the caller's Execer so
// entries written during a reconciliation batch commit or roll back with
// that batch.
func LogChange(ctx context.Context, ex Execer, entry ChangeLogEntry, now time.Time) error {
	const query = `
		INSERT INTO change_log
		(resource_type, resource_id, field_name, old_value, new_value,
		 changed_by, account_id, region, changed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := ex.ExecContext(ctx, query,
		entry.ResourceType,
		entry.ResourceID,
		entry.FieldName,
		entry.OldValue,
		entry.NewValue,
		entry.ChangedBy,
		entry.AccountID,
		entry.Region,
		types.Coerce(now),
	)
	if err != nil {
		return fmt.Errorf("failed to log change for %s %s.%s: %w",
			entry.ResourceType, entry.ResourceID, entry.FieldName, err)
	}
	return nil
}

// ChangesFor returns the change-log rows for one resource, newest
// first. Used by the history command and tests.
func (s *Store) ChangesFor(ctx context.Context, resourceType, resourceID string) ([]ChangeLogEntry, error) {
	const query = `
		SELECT resource_type, resource_id, field_name, old_value, new_value,
		       changed_by, account_id, region, changed_at
		FROM change_log
		WHERE resource_type = ? AND resource_id = ?
		ORDER BY id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to read change log: %w", err)
	}
	defer rows.Close()

	var entries []ChangeLogEntry
	for rows.Next() {
		var e ChangeLogEntry
		if err := rows.Scan(&e.ResourceType, &e.ResourceID, &e.FieldName,
			&e.OldValue, &e.NewValue, &e.ChangedBy, &e.AccountID, &e.Region,
			&e.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan change log row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
