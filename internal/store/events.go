package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

// InsertEvents persists normalized CloudTrail events. The events table
// is created lazily if absent. Inserts are idempotent on event_id: a
// duplicate is silently ignored, never an error. A malformed event is
// logged and skipped without aborting the batch. Returns the number of
// rows actually inserted.
func (s *Store) InsertEvents(ctx context.Context, events []types.CloudTrailEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	if _, err := s.db.ExecContext(ctx, eventsSchema); err != nil {
		return 0, fmt.Errorf("failed to ensure cloudtrail_events table: %w", err)
	}

	const query = `
		INSERT OR IGNORE INTO cloudtrail_events
		(event_id, event_time, event_name, event_source, user_name,
		 resource_name, resource_type, region, changes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	inserted := 0
	now := types.Coerce(time.Now())
	for _, ev := range events {
		changes, err := json.Marshal(ev.Changes)
		if err != nil {
			s.log.WithField("event_id", ev.EventID).Error("failed to encode event changes", err)
			continue
		}
		res, err := s.db.ExecContext(ctx, query,
			ev.EventID,
			types.Coerce(ev.EventTime),
			ev.EventName,
			ev.EventSource,
			ev.UserName,
			ev.ResourceName,
			ev.ResourceType,
			ev.Region,
			string(changes),
			now,
		)
		if err != nil {
			s.log.WithField("event_id", ev.EventID).Error("failed to insert event", err)
			continue
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}

// CountEvents reports how many events are stored, optionally filtered
// by resource type. Empty resourceType counts everything.
func (s *Store) CountEvents(ctx context.Context, resourceType string) (int, error) {
	var n int
	var err error
	if resourceType == "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cloudtrail_events").Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM cloudtrail_events WHERE resource_type = ?", resourceType).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}
