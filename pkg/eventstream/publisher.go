package eventstream

import "context"

// Publisher publishes push events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, event *PushEvent) error
	Close() error
}
