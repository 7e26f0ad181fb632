// Package configcmder provides the config command for managing persistent
// chatspace configuration stored in the .chatspace/ directory.
package configcmder

import (
	"github.com/spf13/cobra"

	"github.com/chatspace-app/chatspace/pkg/config"
)

const configLongDesc string = `Manage persistent chatspace configuration.

Configuration is stored as config.toml in the .chatspace/ directory and
provides default values for command flags. CLI flags and CHATSPACE_*
environment variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  api.listen, client.api_target, push.timeout,
  space.base_url, space.access_token,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  chatspace config set <key> <value>    Set a configuration value
  chatspace config get <key>            Get a configuration value
  chatspace config list                 List all configuration values

Examples:
  chatspace config set storage.driver sqlite
  chatspace config set push.timeout 10s
  chatspace config get api.listen
  chatspace config list`

const configShortDesc string = "Manage persistent chatspace configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// displayValue masks secrets, keeping only their last four characters.
func displayValue(key, value string) string {
	if value == "" || !config.IsSecretConfigKey(key) {
		return value
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
