// Package pushcmder provides the push command for sending content to a
// configured integration.
package pushcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chatspace-app/chatspace/pkg/app"
	"github.com/chatspace-app/chatspace/pkg/cliui"
	"github.com/chatspace-app/chatspace/pkg/config"
	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/logger"
	"github.com/chatspace-app/chatspace/pkg/push"
	"github.com/chatspace-app/chatspace/pkg/utils"
)

// Pusher sends content to an integration, in process or through a running
// server.
type Pusher interface {
	Push(ctx context.Context, key, content, title string) (push.Result, error)
}

type pushCommander struct {
	integration string
	title       string
	file        string
	preview     bool
	interactive bool
	remote      bool
	apiTarget   string
	timeout     time.Duration
	configDir   string
	debug       bool

	flagSet *viper.Viper
	out     io.Writer
	in      io.Reader
	logger  *slog.Logger
}

const pushLongDesc string = `Push content to a configured integration.

The content comes from the arguments, from --file, or from stdin when it is
piped. On success the URL of the stored item is printed. On failure a short
reason is printed and the command exits non-zero.

When exactly one integration is configured --integration may be omitted.
--interactive opens a picker to choose the integration and shows progress
while the push is in flight.

Examples:
  chatspace push -i minima "Buy oat milk"
  chatspace push -i minima -t "Standup notes" -f notes.md --preview
  pbpaste | chatspace push -i minima
  chatspace push --interactive -f answer.md
  chatspace push --remote -i minima "sent through chatspace serve"`

const pushShortDesc string = "Push content to an integration"

var pushFlags = []string{
	config.FlagAPITarget,
	config.FlagPushTimeout,
}

func NewPushCmd() *cobra.Command {
	cmder := &pushCommander{}

	cmd := &cobra.Command{
		Use:   "push [content]",
		Short: pushShortDesc,
		Long:  pushLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Registry, pushFlags)
			cmder.flagSet = v

			cmder.apiTarget = v.GetString("client.api_target")
			cmder.timeout = v.GetDuration("push.timeout")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.out = cmd.OutOrStdout()
			cmder.in = cmd.InOrStdin()
			cmder.logger = logger.New(
				logger.WithDebug(cmder.debug),
				logger.WithPretty(true),
				logger.WithWriter(cmd.ErrOrStderr()),
			)

			// Failures print their own message below.
			cmd.SilenceUsage = true

			return cmder.run(cmd.Context(), args)
		},
	}

	cmd.Flags().StringVarP(&cmder.integration, "integration", "i", "", "Integration to push to")
	cmd.Flags().StringVarP(&cmder.title, "title", "t", "", "Title of the stored item")
	cmd.Flags().StringVarP(&cmder.file, "file", "f", "", "Read content from a file (- for stdin)")
	cmd.Flags().BoolVar(&cmder.preview, "preview", false, "Render the content as markdown before sending")
	cmd.Flags().BoolVar(&cmder.interactive, "interactive", false, "Pick the integration interactively")
	cmd.Flags().BoolVar(&cmder.remote, "remote", false, "Push through a running chatspace server")
	config.AddStringFlag(cmd, config.Registry, config.FlagAPITarget, &cmder.apiTarget)
	config.AddDurationFlag(cmd, config.Registry, config.FlagPushTimeout, &cmder.timeout)

	return cmd
}

func (c *pushCommander) run(ctx context.Context, args []string) error {
	content, err := c.readContent(args)
	if err != nil {
		return err
	}

	if c.preview {
		rendered, err := cliui.RenderMarkdown(content)
		if err != nil {
			c.logger.Debug("markdown render failed", "error", err)
		}
		fmt.Fprint(c.out, rendered)
	}

	pusher, summaries, closeFn, err := c.backend(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if c.interactive {
		return c.runInteractive(ctx, pusher, summaries, content)
	}

	key, err := chooseIntegration(c.integration, summaries)
	if err != nil {
		return err
	}

	var res push.Result
	err = cliui.Step(c.out, "Pushing to "+cliui.NameStyle.Render(key), func() error {
		res, err = pusher.Push(ctx, key, content, c.title)
		return err
	})

	return c.report(res, err)
}

// backend returns the pusher and the configured integrations, either from
// the local store or from the server at --api-target.
func (c *pushCommander) backend(ctx context.Context) (Pusher, []integration.Summary, func(), error) {
	if c.remote {
		client := newRemoteClient(c.apiTarget, c.timeout)
		summaries, err := client.Configured(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		return client, summaries, func() {}, nil
	}

	cfg := config.FromViper(c.flagSet)
	cfg.Push.Timeout = c.timeout.String()

	a, err := app.New(ctx, cfg, c.configDir, c.logger)
	if err != nil {
		return nil, nil, nil, err
	}

	summaries, err := a.Registry.Configured(ctx)
	if err != nil {
		a.Close()
		return nil, nil, nil, err
	}

	return a.Dispatcher, summaries, func() {
		if err := a.Close(); err != nil {
			c.logger.Warn("failed to close store", "error", err)
		}
	}, nil
}

func (c *pushCommander) report(res push.Result, err error) error {
	if err != nil {
		msg := userMessage(err)
		fmt.Fprintf(c.out, "\n  %s\n\n", cliui.ErrorStyle.Render(msg))
		c.logger.Debug("push failed", "error", err)
		return errors.New(msg)
	}

	fmt.Fprintf(c.out, "\n  %s Stored in %s\n  %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(res.Key),
		cliui.LinkStyle.Render(res.Reference),
	)
	return nil
}

// readContent resolves the content from --file, the arguments or piped
// stdin, in that order.
func (c *pushCommander) readContent(args []string) (string, error) {
	var content string

	switch {
	case c.file == "-":
		raw, err := io.ReadAll(c.in)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		content = string(raw)

	case c.file != "":
		raw, err := os.ReadFile(c.file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", c.file, err)
		}
		content = string(raw)

	case len(args) > 0:
		content = strings.Join(args, " ")

	case !isTerminal(c.in):
		raw, err := io.ReadAll(c.in)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		content = string(raw)
	}

	if strings.TrimSpace(content) == "" {
		return "", errors.New("no content to push: pass it as an argument, with --file, or on stdin")
	}

	c.logger.Debug("content ready", "bytes", len(content), "preview", utils.Truncate(content, 40))
	return content, nil
}

// chooseIntegration returns key when given, or the only configured
// integration.
func chooseIntegration(key string, summaries []integration.Summary) (string, error) {
	if key != "" {
		return key, nil
	}

	switch len(summaries) {
	case 0:
		return "", errors.New("no integrations configured: run 'chatspace integrations <key> --instance <host>' first")
	case 1:
		return summaries[0].Key, nil
	default:
		keys := make([]string, 0, len(summaries))
		for _, s := range summaries {
			keys = append(keys, s.Key)
		}
		return "", fmt.Errorf("several integrations are configured, choose one with --integration: %s",
			strings.Join(keys, ", "))
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func userMessage(err error) string {
	var re *remoteError
	if errors.As(err, &re) && re.Body.Message != "" {
		return re.Body.Message
	}
	return push.UserMessage(err)
}
