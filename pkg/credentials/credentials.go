package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/chatspace-app/chatspace/pkg/dotdir"
	"github.com/chatspace-app/chatspace/pkg/integration"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// Manager manages reading and writing credentials.toml in the .chatspace/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .chatspace/ directory; otherwise the standard dotdir resolution
// applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns an empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version:      currentVersion,
				Integrations: make(map[string]integration.Config),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Integrations == nil {
		creds.Integrations = make(map[string]integration.Config)
	}

	// The table name is the key; it is not repeated inside the table.
	for key, cfg := range creds.Integrations {
		cfg.Key = key
		creds.Integrations[key] = cfg
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetIntegration stores cfg under cfg.Key, replacing any previous entry.
func (m *Manager) SetIntegration(cfg integration.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Integrations[cfg.Key] = cfg

	return m.Save(creds)
}

// GetIntegration returns the stored config for key. ok is false when
// nothing is stored.
func (m *Manager) GetIntegration(key string) (integration.Config, bool, error) {
	creds, err := m.Load()
	if err != nil {
		return integration.Config{}, false, err
	}

	cfg, ok := creds.Integrations[key]
	return cfg, ok, nil
}

// RemoveIntegration deletes the stored config for key and reports whether
// one existed.
func (m *Manager) RemoveIntegration(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.Load()
	if err != nil {
		return false, err
	}

	if _, ok := creds.Integrations[key]; !ok {
		return false, nil
	}
	delete(creds.Integrations, key)

	return true, m.Save(creds)
}

// ListIntegrations returns every stored config sorted by key.
func (m *Manager) ListIntegrations() ([]integration.Config, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	configs := make([]integration.Config, 0, len(creds.Integrations))
	for _, cfg := range creds.Integrations {
		configs = append(configs, cfg)
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].Key < configs[j].Key })

	return configs, nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}
