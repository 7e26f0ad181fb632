// Package file stores integration settings in credentials.toml inside the
// .chatspace/ directory.
package file

import (
	"context"

	"github.com/chatspace-app/chatspace/pkg/credentials"
	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/storage"
)

// Driver implements storage.Driver on top of a credentials.Manager.
type Driver struct {
	mgr *credentials.Manager
}

// NewDriver opens the credentials file in configDir (or the resolved
// .chatspace/ directory when empty).
func NewDriver(configDir string) (*Driver, error) {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, err
	}
	return &Driver{mgr: mgr}, nil
}

func (d *Driver) Put(_ context.Context, cfg integration.Config) error {
	cfg, err := storage.ValidateForPut(cfg)
	if err != nil {
		return err
	}
	return d.mgr.SetIntegration(cfg)
}

func (d *Driver) Get(_ context.Context, key string) (integration.Config, error) {
	key = storage.NormalizeKey(key)

	cfg, ok, err := d.mgr.GetIntegration(key)
	if err != nil {
		return integration.Config{}, err
	}
	if !ok {
		return integration.Config{}, storage.ErrNotFound{Key: key}
	}
	return cfg, nil
}

func (d *Driver) Delete(_ context.Context, key string) error {
	key = storage.NormalizeKey(key)

	removed, err := d.mgr.RemoveIntegration(key)
	if err != nil {
		return err
	}
	if !removed {
		return storage.ErrNotFound{Key: key}
	}
	return nil
}

func (d *Driver) List(_ context.Context) ([]integration.Config, error) {
	return d.mgr.ListIntegrations()
}

// Close is a no-op; every call reads and writes the file directly.
func (d *Driver) Close() error {
	return nil
}

// Path returns the credentials file location.
func (d *Driver) Path() string {
	return d.mgr.GetTarget()
}
