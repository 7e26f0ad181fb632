package push

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/chatspace-app/chatspace/pkg/storage"
)

type flowKey struct {
	integration string
	digest      string
}

// Dispatcher runs pushes for callers that have no flow of their own, such
// as the HTTP API and MCP tools. It keeps one Flow per integration and
// content digest while that push is in flight, so a duplicate submission is
// refused with ErrInFlight while other pushes proceed concurrently.
type Dispatcher struct {
	config *Config

	mu       sync.Mutex
	inFlight map[flowKey]*Flow
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(c *Config) (*Dispatcher, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	return &Dispatcher{
		config:   c,
		inFlight: make(map[flowKey]*Flow),
	}, nil
}

// Push sends content to the integration stored under key.
func (d *Dispatcher) Push(ctx context.Context, key, content, title string) (Result, error) {
	key = storage.NormalizeKey(key)
	fk := flowKey{integration: key, digest: digest(content)}

	flow, err := d.acquire(fk)
	if err != nil {
		d.config.Logger.Debug("duplicate push refused", "integration", key)
		return Result{}, err
	}
	defer d.release(fk, flow)

	return flow.run(ctx, key, content, title)
}

// InFlight returns the number of pushes currently pending.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inFlight)
}

func (d *Dispatcher) acquire(fk flowKey) (*Flow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.inFlight[fk]; busy {
		return nil, ErrInFlight
	}

	flow := newFlow(d.config)
	if err := flow.begin(); err != nil {
		return nil, err
	}
	d.inFlight[fk] = flow

	return flow, nil
}

func (d *Dispatcher) release(fk flowKey, flow *Flow) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inFlight[fk] == flow {
		delete(d.inFlight, fk)
	}
}

func digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
