// Package eventstream defines the events emitted when a content push
// settles and the Publisher interface that ships them.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypePushSucceeded is emitted after an integration returned a reference.
	EventTypePushSucceeded = "chatspace.push.succeeded"

	// EventTypePushFailed is emitted after a push settled with an error.
	EventTypePushFailed = "chatspace.push.failed"
)

// PushEvent is a transport-neutral event payload for one settled push.
// The pushed content itself is never included.
type PushEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	EmittedAt     time.Time       `json:"emitted_at"`
	Integration   IntegrationMeta `json:"integration"`
	Title         string          `json:"title,omitempty"`
	ContentBytes  int             `json:"content_bytes"`
	Reference     string          `json:"reference,omitempty"`
	Error         *PushErrorMeta  `json:"error,omitempty"`
	DurationMs    int64           `json:"duration_ms"`
}

// IntegrationMeta identifies the integration the push targeted.
type IntegrationMeta struct {
	Key      string `json:"key"`
	Instance string `json:"instance,omitempty"`
}

// PushErrorMeta describes why a push failed.
type PushErrorMeta struct {
	Kind    string `json:"kind"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

// NewPushEvent stamps a new event of eventType with a fresh ID and the
// current time.
func NewPushEvent(eventType string) *PushEvent {
	return &PushEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
	}
}
