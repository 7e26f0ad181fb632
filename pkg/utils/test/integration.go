package testutils

import (
	"context"
	"sync"

	"github.com/chatspace-app/chatspace/pkg/integration"
)

// PushCall records one StoreContent invocation.
type PushCall struct {
	Content string
	Title   string
}

// MockIntegration is a scriptable integration.Integration.
type MockIntegration struct {
	KeyValue      string
	InstanceValue string

	// Store handles StoreContent when set. Defaults to returning
	// "https://<instance>/notes/<content>".
	Store func(ctx context.Context, content, title string) (string, error)

	mu    sync.Mutex
	calls []PushCall
}

func NewMockIntegration(key, instance string) *MockIntegration {
	return &MockIntegration{KeyValue: key, InstanceValue: instance}
}

func (m *MockIntegration) Key() string { return m.KeyValue }

func (m *MockIntegration) Instance() string { return m.InstanceValue }

func (m *MockIntegration) StoreContent(ctx context.Context, content, title string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, PushCall{Content: content, Title: title})
	store := m.Store
	m.mu.Unlock()

	if store != nil {
		return store(ctx, content, title)
	}
	return "https://" + m.InstanceValue + "/notes/" + content, nil
}

// Calls returns a copy of every recorded invocation.
func (m *MockIntegration) Calls() []PushCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PushCall(nil), m.calls...)
}

// MockFactory returns a factory that hands out mock, recording every config
// it was asked to build.
func MockFactory(mock *MockIntegration, built *[]integration.Config) integration.Factory {
	var mu sync.Mutex
	return func(cfg integration.Config) (integration.Integration, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if built != nil {
			mu.Lock()
			*built = append(*built, cfg)
			mu.Unlock()
		}
		return mock, nil
	}
}

// Gate blocks StoreContent until Release is called, so tests can observe
// a push while it is in flight.
type Gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func NewGate() *Gate {
	return &Gate{
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

// Store is a MockIntegration.Store that waits on the gate.
func (g *Gate) Store(ref string) func(ctx context.Context, content, title string) (string, error) {
	return func(ctx context.Context, _, _ string) (string, error) {
		g.entered <- struct{}{}
		select {
		case <-g.release:
			return ref, nil
		case <-ctx.Done():
			return "", integration.TransportError("mock", ctx.Err())
		}
	}
}

// Entered is signalled each time a push reaches the gate.
func (g *Gate) Entered() <-chan struct{} {
	return g.entered
}

// Release lets every waiting and future push through.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}
