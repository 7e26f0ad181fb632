// Package chatspacecmder
package chatspacecmder

import (
	"github.com/spf13/cobra"

	actionscmder "github.com/chatspace-app/chatspace/cmd/chatspace/actions"
	configcmder "github.com/chatspace-app/chatspace/cmd/chatspace/config"
	integrationscmder "github.com/chatspace-app/chatspace/cmd/chatspace/integrations"
	pushcmder "github.com/chatspace-app/chatspace/cmd/chatspace/push"
	servecmder "github.com/chatspace-app/chatspace/cmd/chatspace/serve"
	versioncmder "github.com/chatspace-app/chatspace/cmd/chatspace/version"
)

const chatspaceLongDesc string = `chatspace sends chat content to the note and knowledge apps you use.

Configure an integration once, then push content to it:
  chatspace integrations minima --instance my-notes.deta.app
  chatspace push -i minima "Remember to renew the certificate"

Run the HTTP API (with the MCP endpoint) using:
  chatspace serve`

const chatspaceShortDesc string = "chatspace - push chat content to your apps"

func NewChatspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatspace",
		Short: chatspaceShortDesc,
		Long:  chatspaceLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .chatspace/ config directory")

	cmd.AddCommand(integrationscmder.NewIntegrationsCmd())
	cmd.AddCommand(pushcmder.NewPushCmd())
	cmd.AddCommand(actionscmder.NewActionsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
