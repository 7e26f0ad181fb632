// Package interop is a client for the Space app actions API, which lets
// chatspace list and invoke actions of other apps the user has installed.
package interop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chatspace-app/chatspace/pkg/utils"
)

const (
	// AccessTokenHeader authenticates requests to the Space API.
	AccessTokenHeader = "X-Space-Access-Token"

	maxResponseBytes = 4 << 20
)

// Config holds configuration for the Space client.
type Config struct {
	// BaseURL is the Space API root, e.g. "https://deta.space/api/v0".
	BaseURL string

	// Token is the Space access token. An empty token leaves the client
	// usable only for IsSetup.
	Token string

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Client calls the Space actions API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Space client.
func NewClient(c Config) (*Client, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("space base URL is required")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimRight(c.BaseURL, "/"),
		token:      strings.TrimSpace(c.Token),
		httpClient: httpClient,
	}, nil
}

// IsSetup reports whether an access token is configured.
func (c *Client) IsSetup() bool {
	return c.token != ""
}

// ListActions returns every action available to the token's owner.
func (c *Client) ListActions(ctx context.Context) ([]Action, error) {
	var resp listActionsResponse
	if err := c.do(ctx, http.MethodGet, "/actions", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing actions: %w", err)
	}
	if resp.Actions == nil {
		resp.Actions = []Action{}
	}
	return resp.Actions, nil
}

// InvokeAction runs action on the app instance and returns its raw JSON
// result. payload may be nil.
func (c *Client) InvokeAction(ctx context.Context, instanceID, action string, payload any) (json.RawMessage, error) {
	if instanceID == "" || action == "" {
		return nil, fmt.Errorf("instance id and action name are required")
	}

	path := "/actions/" + url.PathEscape(instanceID) + "/" + url.PathEscape(action)

	var out json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, payload, &out); err != nil {
		return nil, fmt.Errorf("invoking action %s/%s: %w", instanceID, action, err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if !c.IsSetup() {
		return ErrNotSetup
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", utils.UserAgent())
	req.Header.Set(AccessTokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("null")
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
