// Package mcp provides an MCP (Model Context Protocol) server that lets
// agents list the configured integrations and push content to them.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/push"
	"github.com/chatspace-app/chatspace/pkg/utils"
)

// Lister reports the configured integrations without credentials.
type Lister interface {
	Configured(ctx context.Context) ([]integration.Summary, error)
}

// Pusher sends content to an integration.
type Pusher interface {
	Push(ctx context.Context, key, content, title string) (push.Result, error)
}

type Config struct {
	// Lister backs the list_integrations tool
	Lister Lister

	// Pusher backs the push_content tool
	Pusher Pusher

	// Noop for empty MCP server
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the integration tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "chatspace",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Lister == nil {
			return nil, errors.New("integration lister is required")
		}
		if c.Pusher == nil {
			return nil, errors.New("pusher is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        listToolName,
			Description: listDescription,
		}, s.handleListIntegrations)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        pushToolName,
			Description: pushDescription,
		}, s.handlePushContent)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// MCPServer returns the underlying server for non-HTTP transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
