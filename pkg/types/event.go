package types

import "time"

// CloudTrailEvent is a normalized audit event. EventID is its identity;
// inserting the same event twice is a no-op.
type CloudTrailEvent struct {
	EventID      string         `json:"event_id"`
	EventTime    time.Time      `json:"event_time"`
	EventName    string         `json:"event_name"`
	EventSource  string         `json:"event_source"`
	UserName     string         `json:"user_name"`
	ResourceName string         `json:"resource_name"`
	ResourceType string         `json:"resource_type"`
	Region       string         `json:"region"`
	Changes      map[string]any `json:"changes"`
}
