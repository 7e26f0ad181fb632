// Package servecmder provides the serve command, which runs the chatspace
// HTTP API and MCP endpoint.
package servecmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatspace-app/chatspace/api"
	"github.com/chatspace-app/chatspace/pkg/app"
	"github.com/chatspace-app/chatspace/pkg/config"
	"github.com/chatspace-app/chatspace/pkg/logger"
)

type serveCommander struct {
	configDir string
	debug     bool
	jsonLogs  bool
	logFile   string
	noMCP     bool

	// bound from the flag registry; the merged view is read from cfg
	listen      string
	storage     string
	sqlitePath  string
	postgresDSN string
	timeout     time.Duration
	spaceURL    string
	events      string
	brokers     string
	topic       string

	cfg    *config.Config
	errOut io.Writer
	logger *slog.Logger
}

const serveLongDesc string = `Run the chatspace API server.

The server exposes the configured integrations over HTTP:
  GET    /v1/integrations
  PUT    /v1/integrations/:key
  DELETE /v1/integrations/:key
  POST   /v1/integrations/:key/push
  GET    /v1/space/actions
  POST   /v1/space/actions/:instance/:action

and an MCP endpoint at /mcp with the list_integrations and push_content
tools. Push outcomes are published to Kafka when --events kafka is set.

Examples:
  chatspace serve
  chatspace serve --listen :9000 --storage sqlite
  chatspace serve --events kafka --kafka-brokers localhost:9092 --log-file serve.log`

const serveShortDesc string = "Run the chatspace API server"

var serveFlags = []string{
	config.FlagAPIListen,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagPushTimeout,
	config.FlagSpaceBaseURL,
	config.FlagEventsProvider,
	config.FlagEventsBrokers,
	config.FlagEventsTopic,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Registry, serveFlags)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.errOut = cmd.ErrOrStderr()

			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx)
		},
	}

	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Do not mount the MCP endpoint")
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json-logs", false, "Write JSON logs to stderr")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")
	config.AddStringFlag(cmd, config.Registry, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Registry, config.FlagStorageDriver, &cmder.storage)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddDurationFlag(cmd, config.Registry, config.FlagPushTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.Registry, config.FlagSpaceBaseURL, &cmder.spaceURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagEventsProvider, &cmder.events)
	config.AddStringFlag(cmd, config.Registry, config.FlagEventsBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, config.Registry, config.FlagEventsTopic, &cmder.topic)

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := app.New(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			c.logger.Error("failed to close runtime", "error", err)
		}
	}()

	space, err := a.SpaceClient()
	if err != nil {
		return fmt.Errorf("creating space client: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr: c.cfg.API.Listen,
		Space:      space,
		DisableMCP: c.noMCP,
	}, a.Store, a.Registry, a.Dispatcher, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("chatspace server configured",
		"storage", c.cfg.Storage.Driver,
		"events", c.cfg.Events.Provider,
		"push_timeout", c.cfg.Push.TimeoutDuration(),
		"space_actions", space.IsSetup(),
		"mcp", !c.noMCP,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		c.logger.Info("shutting down")
		return server.Shutdown()
	}
}

// setupLogger builds the terminal logger and, with --log-file, pairs it
// with a JSON file logger.
func (c *serveCommander) setupLogger() (func(), error) {
	term := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(!c.jsonLogs),
		logger.WithJSON(c.jsonLogs),
		logger.WithWriter(c.errOut),
	)

	if c.logFile == "" {
		c.logger = term
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	c.logger = logger.Multi(term, logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithSource(c.debug),
		logger.WithWriter(f),
	))

	return func() { f.Close() }, nil
}
