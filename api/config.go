// Package api provides the chatspace HTTP API: integration settings, content
// push, Space actions and the MCP endpoint.
package api

import (
	"github.com/chatspace-app/chatspace/pkg/interop"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Space is the optional Space actions client. Without it the actions
	// routes report that Space is not set up.
	Space *interop.Client

	// DisableMCP leaves the /mcp route unmounted.
	DisableMCP bool
}
