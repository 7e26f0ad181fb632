package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chatspace-app/chatspace/pkg/cliui"
	"github.com/chatspace-app/chatspace/pkg/config"
)

const getLongDesc string = `Get a configuration value.

Reads the value for the given key from the config.toml file stored in
the .chatspace/ directory. Secret values are masked.

Examples:
  chatspace config get storage.driver
  chatspace config get push.timeout`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(cmd, args[0], configDir)
		},
		ValidArgsFunction: completeKeys,
	}

	return cmd
}

func runGet(cmd *cobra.Command, key, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if value == "" {
		fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render(key), cliui.DimStyle.Render("<not set>"))
	} else {
		fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render(key), cliui.ValueStyle.Render(displayValue(key, value)))
	}

	return nil
}
