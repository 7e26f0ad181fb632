package credentials

import "github.com/chatspace-app/chatspace/pkg/integration"

// Credentials represents the stored integration settings in credentials.toml.
//
//	version = 0
//
//	[integrations.minima]
//	instance = "example.deta.app"
//	api_key = "..."
type Credentials struct {
	Version      int                           `toml:"version"`
	Integrations map[string]integration.Config `toml:"integrations"`
}
