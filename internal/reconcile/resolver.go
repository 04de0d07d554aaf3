package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudbeacon/driftlog/internal/logger"
	"github.com/cloudbeacon/driftlog/internal/store"
)

// UnknownActor is returned when no event matches or no database is
// available.
const UnknownActor = "unknown"

// Resolver answers "who changed this field" by querying stored
// CloudTrail events. It runs on whatever Querier the caller holds,
// typically the reconciliation batch's own transaction.
type Resolver struct {
	q   store.Querier
	log logger.Logger
}

func NewResolver(q store.Querier, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNop()
	}
	return &Resolver{q: q, log: log}
}

// Latest returns the actor of the most recent stored event for the
// resource. When the field has an event-name mapping the lookup is
// narrowed to those names; otherwise any event for the resource counts.
func (r *Resolver) Latest(ctx context.Context, ts TypeSpec, resourceID, field string) string {
	if r == nil || r.q == nil {
		return UnknownActor
	}

	events := ts.FieldEvents[field]
	var query string
	args := []any{resourceID, ts.eventType()}
	if len(events) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(events)), ",")
		query = fmt.Sprintf(`
			SELECT user_name FROM cloudtrail_events
			WHERE resource_name = ? AND resource_type = ?
			AND event_name IN (%s)
			ORDER BY event_time DESC LIMIT 1`, placeholders)
		for _, ev := range events {
			args = append(args, ev)
		}
	} else {
		query = `
			SELECT user_name FROM cloudtrail_events
			WHERE resource_name = ? AND resource_type = ?
			ORDER BY event_time DESC LIMIT 1`
	}

	var user string
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&user); err != nil {
		return UnknownActor
	}
	return user
}

// Nearest returns the actor of the event whose timestamp is closest to
// at by absolute delta, capped at a 24 hour window. This tie-break is a
// deliberate per-type divergence from Latest.
func (r *Resolver) Nearest(ctx context.Context, ts TypeSpec, resourceID string, at time.Time) string {
	if r == nil || r.q == nil {
		return UnknownActor
	}

	const query = `
		SELECT user_name FROM cloudtrail_events
		WHERE resource_type = ? AND resource_name = ?
		AND ABS(strftime('%s', event_time) - ?) < 86400
		ORDER BY ABS(strftime('%s', event_time) - ?) ASC LIMIT 1`

	epoch := at.UTC().Unix()
	var user string
	if err := r.q.QueryRowContext(ctx, query, ts.eventType(), resourceID, epoch, epoch).Scan(&user); err != nil {
		return UnknownActor
	}
	return user
}

// Resolve applies the resource type's attribution policy for one
// changed field.
func (r *Resolver) Resolve(ctx context.Context, ts TypeSpec, resourceID, field string, at time.Time) string {
	if ts.Attribution == AttributionNearest {
		return r.Nearest(ctx, ts, resourceID, at)
	}
	return r.Latest(ctx, ts, resourceID, field)
}
