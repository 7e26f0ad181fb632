package pushcmder

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

	"github.com/chatspace-app/chatspace/api"
	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/push"
)

// remoteClient pushes through the HTTP API of a running chatspace server.
type remoteClient struct {
	target string
	client *http.Client
}

// remoteError is a non-2xx answer from the server.
type remoteError struct {
	Status int
	Body   api.ErrorResponse
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Status, e.Body.Error)
}

func newRemoteClient(target string, timeout time.Duration) *remoteClient {
	return &remoteClient{
		target: strings.TrimRight(target, "/"),
		client: &http.Client{Timeout: timeout + 5*time.Second},
	}
}

func (r *remoteClient) Configured(ctx context.Context) ([]integration.Summary, error) {
	var resp api.IntegrationListResponse
	if err := r.do(ctx, http.MethodGet, "/v1/integrations", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Integrations, nil
}

func (r *remoteClient) Push(ctx context.Context, key, content, title string) (push.Result, error) {
	start := time.Now()

	var resp api.PushResponse
	path := "/v1/integrations/" + url.PathEscape(key) + "/push"
	body := api.PushRequest{Content: content, Title: title}
	if err := r.do(ctx, http.MethodPost, path, body, http.StatusCreated, &resp); err != nil {
		return push.Result{}, err
	}

	return push.Result{Key: resp.Key, Reference: resp.Reference, Duration: time.Since(start)}, nil
}

func (r *remoteClient) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.target+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s from API: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading API response: %w", err)
	}

	if resp.StatusCode != want {
		re := &remoteError{Status: resp.StatusCode}
		if err := json.Unmarshal(raw, &re.Body); err != nil || re.Body.Error == "" {
			re.Body.Error = strings.TrimSpace(string(raw))
		}
		return re
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing API response: %w", err)
	}
	return nil
}
