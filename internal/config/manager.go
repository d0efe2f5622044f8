// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/meetingbot/internal/log"
)

// ErrConfigExists is returned by WriteDefault when the target file exists
// and overwrite was not requested.
var ErrConfigExists = errors.New("config file already exists")

// Manager handles configuration persistence.
type Manager struct {
	configPath string
}

// NewManager creates a new configuration manager.
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
	}
}

// Path returns the managed config file path.
func (m *Manager) Path() string { return m.configPath }

// WriteDefault writes the default configuration. An existing file is only
// replaced when overwrite is true.
func (m *Manager) WriteDefault(overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(m.configPath); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, m.configPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}
	return m.Save(Defaults())
}

// Save writes the configuration to disk atomically.
func (m *Manager) Save(cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o750); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	data, err := Marshal(ToFile(cfg))
	if err != nil {
		return err
	}

	// renameio handles: temp file creation, fsync, atomic rename, cleanup on error
	pendingFile, err := renameio.NewPendingFile(m.configPath, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending config file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger := log.WithComponent("config")
			logger.Debug().Err(err).Msg("cleanup pending config file")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write config data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace config file: %w", err)
	}
	return nil
}

// Marshal encodes a file config as two-space indented YAML.
func Marshal(fc FileConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fc); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}
