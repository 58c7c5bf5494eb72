// Package telemetry emits session lifecycle events to downstream consumers.
package telemetry

import "time"

// Event types emitted by the session service.
const (
	EventSessionOpened   = "session.opened"
	EventSessionVerified = "session.verified"
	EventSessionRevoked  = "session.revoked"
)

// SessionEvent is one session lifecycle event.
type SessionEvent struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
