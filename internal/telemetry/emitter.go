package telemetry

import "context"

// EventEmitter emits session events (e.g. to Kafka). Best-effort; callers log
// and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *SessionEvent) error
}
