package actionscmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chatspace-app/chatspace/pkg/cliui"
	"github.com/chatspace-app/chatspace/pkg/interop"
)

const listShortDesc string = "List the actions available in your Space"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			actions, err := client.ListActions(cmd.Context())
			if err != nil {
				return err
			}

			printActions(cmd, actions)
			return nil
		},
	}

	return cmd
}

func printActions(cmd *cobra.Command, actions []interop.Action) {
	out := cmd.OutOrStdout()

	if len(actions) == 0 {
		fmt.Fprintf(out, "\n  %s No actions found.\n\n", cliui.DimStyle.Render("●"))
		return
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render("Space actions"))
	for _, a := range actions {
		app := a.InstanceAlias
		if app == "" {
			app = a.AppName
		}

		title := a.Title
		if title == "" {
			title = a.Name
		}

		fmt.Fprintf(out, "  %s  %s %s\n",
			cliui.NameStyle.Render(a.InstanceID+" "+a.Name),
			cliui.ValueStyle.Render(title),
			cliui.DimStyle.Render("("+app+")"),
		)

		if len(a.Input) > 0 {
			inputs := make([]string, 0, len(a.Input))
			for _, in := range a.Input {
				s := in.Name + ":" + in.Type
				if in.Optional {
					s += "?"
				}
				inputs = append(inputs, s)
			}
			fmt.Fprintf(out, "      %s\n", cliui.KeyStyle.Render(strings.Join(inputs, ", ")))
		}
	}
	fmt.Fprintln(out)
}
