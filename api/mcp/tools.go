package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/push"
)

const (
	listToolName = "list_integrations"
	pushToolName = "push_content"
)

var (
	listDescription = "List the integrations chatspace can push content to. " +
		"Returns each integration key with the instance it points at; credentials are never returned."

	pushDescription = "Push text content (for example a chat reply) to a configured integration " +
		"and return the URL of the stored item. Use list_integrations first to discover valid keys."
)

// ListInput takes no arguments.
type ListInput struct{}

// ListOutput is the list_integrations result.
type ListOutput struct {
	Count        int                   `json:"count" jsonschema:"Number of configured integrations"`
	Integrations []integration.Summary `json:"integrations" jsonschema:"Configured integrations"`
}

// PushInput is the push_content argument set.
type PushInput struct {
	Integration string `json:"integration" jsonschema:"Integration key, e.g. minima"`
	Content     string `json:"content" jsonschema:"The text to store"`
	Title       string `json:"title,omitempty" jsonschema:"Optional title for the stored item"`
}

// PushOutput is the push_content result.
type PushOutput struct {
	Key       string `json:"key" jsonschema:"Integration the content was stored in"`
	Reference string `json:"reference" jsonschema:"URL of the stored item"`
}

func (s *Server) handleListIntegrations(ctx context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListOutput, error) {
	summaries, err := s.config.Lister.Configured(ctx)
	if err != nil {
		s.config.Logger.Error("failed to list integrations", "error", err)
		return errorResult("Failed to list integrations: " + err.Error()), ListOutput{Integrations: []integration.Summary{}}, nil
	}

	if summaries == nil {
		summaries = []integration.Summary{}
	}

	return nil, ListOutput{Count: len(summaries), Integrations: summaries}, nil
}

func (s *Server) handlePushContent(ctx context.Context, _ *mcp.CallToolRequest, input PushInput) (*mcp.CallToolResult, PushOutput, error) {
	if input.Integration == "" {
		return errorResult("integration is required"), PushOutput{}, nil
	}
	if input.Content == "" {
		return errorResult("content is required"), PushOutput{}, nil
	}

	res, err := s.config.Pusher.Push(ctx, input.Integration, input.Content, input.Title)
	if err != nil {
		s.config.Logger.Debug("push_content failed",
			"integration", input.Integration,
			"error", err,
		)
		return errorResult(push.UserMessage(err)), PushOutput{}, nil
	}

	return nil, PushOutput{Key: res.Key, Reference: res.Reference}, nil
}
