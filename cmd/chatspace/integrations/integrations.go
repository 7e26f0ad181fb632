// Package integrationscmder provides the integrations command for storing
// the instance and credential of each content integration.
package integrationscmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chatspace-app/chatspace/pkg/cliui"
	"github.com/chatspace-app/chatspace/pkg/config"
	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/integration/registry"
	"github.com/chatspace-app/chatspace/pkg/storage"
	storageutils "github.com/chatspace-app/chatspace/pkg/storage/utils"
)

const integrationsLongDesc string = `Store the settings chatspace needs to push content to an app.

Each integration needs the instance it points at (for Minima, the host name
of your Space app) and the app's API key. Settings are kept in the store
selected by storage.driver, credentials.toml in the .chatspace/ directory by
default. Saving an integration again replaces its settings.

Supported integrations: minima

Examples:
  chatspace integrations minima --instance my-notes.deta.app
  echo $KEY | chatspace integrations minima --instance my-notes.deta.app
  chatspace integrations --list
  chatspace integrations --remove minima`

const integrationsShortDesc string = "Store integration settings"

type integrationsCommander struct {
	instance   string
	listFlag   bool
	removeFlag string
	configDir  string

	out io.Writer
	in  io.Reader
}

func NewIntegrationsCmd() *cobra.Command {
	cmder := &integrationsCommander{}

	cmd := &cobra.Command{
		Use:     "integrations [key]",
		Aliases: []string{"integration"},
		Short:   integrationsShortDesc,
		Long:    integrationsLongDesc,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.out = cmd.OutOrStdout()
			cmder.in = cmd.InOrStdin()

			switch {
			case cmder.listFlag:
				return cmder.runList(cmd.Context())
			case cmder.removeFlag != "":
				return cmder.runRemove(cmd.Context(), cmder.removeFlag)
			default:
				if len(args) == 0 {
					return fmt.Errorf("integration argument required\n\nSupported integrations: %s",
						strings.Join(supported(), ", "))
				}
				return cmder.runSave(cmd.Context(), args[0])
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return supported(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().StringVar(&cmder.instance, "instance", "", "Instance host of the integration (e.g. my-notes.deta.app)")
	cmd.Flags().BoolVar(&cmder.listFlag, "list", false, "List configured integrations")
	cmd.Flags().StringVar(&cmder.removeFlag, "remove", "", "Remove the settings of an integration")

	return cmd
}

func supported() []string {
	return registry.Default(nil).Supported()
}

func (c *integrationsCommander) openStore(ctx context.Context) (storage.Driver, error) {
	v, err := config.InitViper(c.configDir)
	if err != nil {
		return nil, err
	}
	cfg := config.FromViper(v)

	store, err := storageutils.NewDriver(ctx, cfg.Storage, c.configDir)
	if err != nil {
		return nil, fmt.Errorf("opening integration store: %w", err)
	}
	return store, nil
}

func (c *integrationsCommander) runSave(ctx context.Context, key string) error {
	key = storage.NormalizeKey(key)

	reg := registry.Default(nil)
	if !reg.IsSupported(key) {
		return fmt.Errorf("unsupported integration: %q\n\nSupported integrations: %s",
			key, strings.Join(reg.Supported(), ", "))
	}

	instance := strings.TrimSpace(c.instance)
	if instance == "" {
		return errors.New("--instance is required")
	}

	apiKey, err := c.readAPIKey(key)
	if err != nil {
		return err
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key cannot be empty")
	}

	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Put(ctx, integration.Config{Key: key, Instance: instance, APIKey: apiKey}); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Stored %s settings %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(key),
		cliui.DimStyle.Render("("+instance+")"),
	)
	return nil
}

func (c *integrationsCommander) runList(ctx context.Context) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := registry.Default(store).Configured(ctx)
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		fmt.Fprintf(c.out, "\n  %s No configured integrations.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(c.out, "  Use 'chatspace integrations <key> --instance <host>' to add one.\n")
		fmt.Fprintf(c.out, "  Supported integrations: %s\n\n", strings.Join(supported(), ", "))
		return nil
	}

	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.HeaderStyle.Render("Configured integrations"))
	for _, s := range summaries {
		fmt.Fprintf(c.out, "  %s  %s  %s\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(s.Key),
			cliui.DimStyle.Render("→ "+s.Instance),
		)
	}
	fmt.Fprintln(c.out)

	return nil
}

func (c *integrationsCommander) runRemove(ctx context.Context, key string) error {
	key = storage.NormalizeKey(key)

	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(ctx, key); err != nil {
		if storage.IsNotFound(err) {
			return fmt.Errorf("integration %q is not configured", key)
		}
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Removed %s settings.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(key))
	return nil
}

// readAPIKey reads an API key from the command input. A pipe yields its
// first line; a terminal gets a hidden prompt.
func (c *integrationsCommander) readAPIKey(key string) (string, error) {
	if f, ok := c.in.(*os.File); ok {
		fi, err := f.Stat()
		if err != nil {
			return "", fmt.Errorf("checking stdin: %w", err)
		}

		if fi.Mode()&os.ModeCharDevice != 0 {
			fmt.Fprintf(c.out, "Enter API key for %s: ", key)

			keyBytes, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(c.out) // newline after hidden input
			if err != nil {
				return "", fmt.Errorf("reading API key: %w", err)
			}
			return string(keyBytes), nil
		}
	}

	scanner := bufio.NewScanner(c.in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
