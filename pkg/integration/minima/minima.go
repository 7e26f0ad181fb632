// Package minima pushes content to a Minima notes instance running on Deta
// Space. Notes are created with POST https://{instance}/api/notes and are
// reachable afterwards at https://{instance}/notes/{key}.
package minima

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/utils"
)

const (
	// Key identifies the Minima adapter in the registry and settings store.
	Key = "minima"

	// DefaultTitle is sent when the caller gives no title.
	DefaultTitle = "Untitled"

	// appKeyHeader carries the Space app key; Minima ignores Authorization.
	appKeyHeader = "X-Space-App-Key"

	notesPath = "/api/notes"

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 1 << 20
)

var defaultHTTPClient = &http.Client{
	Timeout:       60 * time.Second,
	CheckRedirect: noRedirect,
}

// noRedirect makes a 3xx the final response: one StoreContent is one call,
// and the app key never reaches another host.
func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// Minima is immutable once built; a changed config needs a new adapter.
type Minima struct {
	instance string
	apiKey   string
	scheme   string
	client   *http.Client
}

// Option customises a Minima adapter.
type Option func(*Minima)

// WithHTTPClient overrides the shared HTTP client. Redirects are never
// followed, whatever c's own policy is.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Minima) {
		if c != nil {
			clone := *c
			clone.CheckRedirect = noRedirect
			m.client = &clone
		}
	}
}

// WithScheme overrides the https scheme, for local instances and tests.
func WithScheme(scheme string) Option {
	return func(m *Minima) {
		if scheme != "" {
			m.scheme = scheme
		}
	}
}

// New builds an adapter from a stored configuration.
func New(cfg integration.Config, opts ...Option) (*Minima, error) {
	if cfg.Key == "" {
		cfg.Key = Key
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Key != Key {
		return nil, fmt.Errorf("%w: key %q is not %q", integration.ErrInvalidConfig, cfg.Key, Key)
	}

	m := &Minima{
		instance: normalizeInstance(cfg.Instance),
		apiKey:   strings.TrimSpace(cfg.APIKey),
		scheme:   "https",
		client:   defaultHTTPClient,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Factory adapts New to integration.Factory.
func Factory(opts ...Option) integration.Factory {
	return func(cfg integration.Config) (integration.Integration, error) {
		return New(cfg, opts...)
	}
}

func (m *Minima) Key() string { return Key }

func (m *Minima) Instance() string { return m.instance }

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type noteResponse struct {
	Data *struct {
		Key any `json:"key"`
	} `json:"data"`
}

// StoreContent creates a note and returns its URL.
func (m *Minima) StoreContent(ctx context.Context, content, title string) (string, error) {
	if title == "" {
		title = DefaultTitle
	}

	body, err := json.Marshal(noteRequest{Title: title, Content: content})
	if err != nil {
		return "", fmt.Errorf("encoding note: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL()+notesPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", utils.UserAgent())
	req.Header.Set(appKeyHeader, m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", integration.TransportError(Key, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", integration.TransportError(Key, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", integration.StatusError(Key, resp.StatusCode, serviceMessage(respBody))
	}

	id, err := noteKey(respBody)
	if err != nil {
		return "", integration.MalformedError(Key, err.Error(), nil)
	}

	return m.baseURL() + "/notes/" + url.PathEscape(id), nil
}

func (m *Minima) baseURL() string {
	return m.scheme + "://" + m.instance
}

// noteKey extracts data.key. Numbers are accepted and formatted; anything
// else, empty strings included, is malformed.
func noteKey(body []byte) (string, error) {
	var parsed noteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.New("response body is not valid JSON")
	}
	if parsed.Data == nil {
		return "", errors.New("response has no data object")
	}

	switch k := parsed.Data.Key.(type) {
	case string:
		if strings.TrimSpace(k) == "" {
			return "", errors.New("response data.key is empty")
		}
		return k, nil
	case float64:
		return fmt.Sprintf("%.0f", k), nil
	case nil:
		return "", errors.New("response has no data.key")
	default:
		return "", fmt.Errorf("response data.key has unexpected type %T", k)
	}
}

// serviceMessage pulls a human readable message out of an error body. The
// shapes seen from Space apps are {"error":"..."}, {"error":{"message":"..."}},
// {"errors":["..."]} and {"message":"..."}.
func serviceMessage(body []byte) string {
	var parsed struct {
		Error   json.RawMessage `json:"error"`
		Errors  []string        `json:"errors"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}

	if len(parsed.Error) > 0 {
		var s string
		if json.Unmarshal(parsed.Error, &s) == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(parsed.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}

	if len(parsed.Errors) > 0 {
		return strings.Join(parsed.Errors, "; ")
	}

	return parsed.Message
}

// normalizeInstance accepts "host", "https://host" or "host/" and keeps
// only the host part.
func normalizeInstance(instance string) string {
	instance = strings.TrimSpace(instance)
	instance = strings.TrimPrefix(instance, "https://")
	instance = strings.TrimPrefix(instance, "http://")
	return strings.TrimRight(instance, "/")
}
