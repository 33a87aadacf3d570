package models

import "time"

// Activity log event types.
const (
	EventPairing    = "PAIRING"
	EventConnection = "CONNECTION"
	EventTeleop     = "TELEOP"
	EventVideo      = "VIDEO"
	EventCommand    = "COMMAND"
	EventError      = "ERROR"
)

// RobotEvent is a single activity log entry.
type RobotEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
