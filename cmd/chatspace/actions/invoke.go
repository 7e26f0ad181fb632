package actionscmder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const invokeLongDesc string = `Invoke a Space app action.

The action is addressed by the app instance id and the action name, both
shown by 'chatspace actions list'. The JSON result is printed as returned.

Examples:
  chatspace actions invoke a0b1c2 save --payload '{"text":"hello"}'`

const invokeShortDesc string = "Invoke a Space app action"

func newInvokeCmd() *cobra.Command {
	var payload string

	cmd := &cobra.Command{
		Use:   "invoke <instance> <action>",
		Short: invokeShortDesc,
		Long:  invokeLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if payload != "" {
				if !json.Valid([]byte(payload)) {
					return errors.New("--payload must be valid JSON")
				}
				body = json.RawMessage(payload)
			}

			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			out, err := client.InvokeAction(cmd.Context(), args[0], args[1], body)
			if err != nil {
				return err
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, out, "", "  "); err != nil {
				pretty.Reset()
				pretty.Write(out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&payload, "payload", "", "JSON payload passed to the action")

	return cmd
}
