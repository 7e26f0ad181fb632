// Package app assembles the push runtime from config: the settings store,
// the integration registry, the event publisher and the dispatcher.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chatspace-app/chatspace/pkg/config"
	"github.com/chatspace-app/chatspace/pkg/eventstream"
	eventstreamutils "github.com/chatspace-app/chatspace/pkg/eventstream/utils"
	"github.com/chatspace-app/chatspace/pkg/integration/registry"
	"github.com/chatspace-app/chatspace/pkg/interop"
	"github.com/chatspace-app/chatspace/pkg/push"
	"github.com/chatspace-app/chatspace/pkg/storage"
	storageutils "github.com/chatspace-app/chatspace/pkg/storage/utils"
)

// App holds the long-lived components shared by the CLI and the server.
type App struct {
	Config     *config.Config
	Store      storage.Driver
	Registry   *registry.Registry
	Publisher  eventstream.Publisher
	Dispatcher *push.Dispatcher
}

// New opens the configured store and publisher and wires a dispatcher on
// top. Close releases both.
func New(ctx context.Context, cfg *config.Config, configDir string, logger *slog.Logger, opts ...registry.Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	store, err := storageutils.NewDriver(ctx, cfg.Storage, configDir)
	if err != nil {
		return nil, fmt.Errorf("opening integration store: %w", err)
	}
	logger.Debug("integration store ready", "driver", cfg.Storage.Driver)

	publisher, err := eventstreamutils.NewPublisher(cfg.Events, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	reg := registry.Default(store, opts...)

	dispatcher, err := push.NewDispatcher(&push.Config{
		Resolver:  reg,
		Timeout:   cfg.Push.TimeoutDuration(),
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		publisher.Close()
		store.Close()
		return nil, err
	}

	return &App{
		Config:     cfg,
		Store:      store,
		Registry:   reg,
		Publisher:  publisher,
		Dispatcher: dispatcher,
	}, nil
}

// SpaceClient builds the Space actions client from config. The client
// reports IsSetup false when no access token is configured.
func (a *App) SpaceClient() (*interop.Client, error) {
	return interop.NewClient(interop.Config{
		BaseURL: a.Config.Space.BaseURL,
		Token:   a.Config.Space.AccessToken,
	})
}

// Close flushes the publisher and closes the store.
func (a *App) Close() error {
	return errors.Join(a.Publisher.Close(), a.Store.Close())
}
