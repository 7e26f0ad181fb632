package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/chatspace-app/chatspace/api/mcp"
	"github.com/chatspace-app/chatspace/pkg/integration/registry"
	"github.com/chatspace-app/chatspace/pkg/push"
	"github.com/chatspace-app/chatspace/pkg/storage"
)

// Server is the API server for managing integrations and pushing content.
type Server struct {
	config     Config
	store      storage.Driver
	registry   *registry.Registry
	dispatcher *push.Dispatcher
	logger     *slog.Logger
	app        *fiber.App
}

// NewServer creates a new API server. The store is the same driver the
// registry resolves from, so settings written here are visible to the next
// push without any reload.
func NewServer(config Config, store storage.Driver, reg *registry.Registry, dispatcher *push.Dispatcher, logger *slog.Logger) (*Server, error) {
	if store == nil {
		return nil, errors.New("storage driver is required")
	}
	if reg == nil {
		return nil, errors.New("registry is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	// Route params and bodies are kept past the handler (store keys, events),
	// so they must not alias fasthttp's reused buffers.
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})

	s := &Server{
		config:     config,
		store:      store,
		registry:   reg,
		dispatcher: dispatcher,
		logger:     logger,
		app:        app,
	}

	app.Get("/ping", s.handlePing)

	v1 := app.Group("/v1")
	v1.Get("/integrations", s.handleListIntegrations)
	v1.Put("/integrations/:key", s.handlePutIntegration)
	v1.Delete("/integrations/:key", s.handleDeleteIntegration)
	v1.Post("/integrations/:key/push", s.handlePush)

	v1.Get("/space/actions", s.handleListActions)
	v1.Post("/space/actions/:instance/:action", s.handleInvokeAction)
	app.Get("/api/space/actions/config", s.handleActionsConfig)

	if !config.DisableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Lister: reg,
			Pusher: dispatcher,
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}
