package api

import (
	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/interop"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`

	// Kind is the push failure kind, set for push errors only.
	Kind string `json:"kind,omitempty"`

	// Status is the upstream HTTP status when Kind is http_status.
	Status int `json:"status,omitempty"`

	// Message is a short sentence fit for showing to a user.
	Message string `json:"message,omitempty"`
}

// IntegrationListResponse lists configured integrations without credentials.
type IntegrationListResponse struct {
	Count        int                   `json:"count"`
	Integrations []integration.Summary `json:"integrations"`
	Supported    []string              `json:"supported"`
}

// PutIntegrationRequest stores the settings for one integration.
type PutIntegrationRequest struct {
	Instance string `json:"instance"`
	APIKey   string `json:"api_key"`
}

// PushRequest is the body of a push.
type PushRequest struct {
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
}

// PushResponse carries the reference of the stored content.
type PushResponse struct {
	Key        string `json:"key"`
	Reference  string `json:"reference"`
	DurationMs int64  `json:"duration_ms"`
}

// ActionsConfigResponse reports whether Space actions are usable.
type ActionsConfigResponse struct {
	IsSetup bool `json:"isSetup"`
}

// ActionListResponse lists the Space actions visible to the token.
type ActionListResponse struct {
	Count   int              `json:"count"`
	Actions []interop.Action `json:"actions"`
}
