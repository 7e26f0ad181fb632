// Package actionscmder provides the actions command for listing and invoking
// Space app actions.
package actionscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatspace-app/chatspace/pkg/config"
	"github.com/chatspace-app/chatspace/pkg/interop"
)

const actionsLongDesc string = `List and invoke the app actions of your Space.

Requires a Space access token, set with
  chatspace config set space.access_token <token>
or the SPACE_ACCESS_TOKEN environment variable.

Examples:
  chatspace actions list
  chatspace actions invoke a0b1c2 save --payload '{"text":"hello"}'`

const actionsShortDesc string = "List and invoke Space app actions"

func NewActionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: actionsShortDesc,
		Long:  actionsLongDesc,
	}

	cmd.PersistentFlags().String(config.Registry[config.FlagSpaceBaseURL].Name, "", config.Registry[config.FlagSpaceBaseURL].Description)

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newInvokeCmd())

	return cmd
}

// newClient builds the Space client from config, with --space-url taking
// precedence.
func newClient(cmd *cobra.Command) (*interop.Client, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.Registry, []string{config.FlagSpaceBaseURL})
	cfg := config.FromViper(v)

	client, err := interop.NewClient(interop.Config{
		BaseURL: cfg.Space.BaseURL,
		Token:   cfg.Space.AccessToken,
	})
	if err != nil {
		return nil, err
	}
	if !client.IsSetup() {
		return nil, fmt.Errorf("%w: run 'chatspace config set space.access_token <token>' or set SPACE_ACCESS_TOKEN", interop.ErrNotSetup)
	}

	return client, nil
}
