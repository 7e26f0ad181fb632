package testutils

import (
	"context"
	"sync"

	"github.com/chatspace-app/chatspace/pkg/eventstream"
)

// RecordingPublisher keeps every published event in memory.
type RecordingPublisher struct {
	// Err, when set, is returned from Publish after recording.
	Err error

	mu     sync.Mutex
	events []*eventstream.PushEvent
	closed bool
}

func (r *RecordingPublisher) Publish(_ context.Context, event *eventstream.PushEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

func (r *RecordingPublisher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Events returns a copy of every recorded event.
func (r *RecordingPublisher) Events() []*eventstream.PushEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*eventstream.PushEvent(nil), r.events...)
}

func (r *RecordingPublisher) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
