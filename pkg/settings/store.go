package settings

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	// ConfigDirName is the name of the config directory.
	ConfigDirName = "qcli"
	// SettingsFileName is the name of the settings file.
	SettingsFileName = "settings.json"
)

// Store manages persistent settings storage.
type Store struct {
	configDir string
	settings  *Settings
	mu        sync.RWMutex
}

// NewStore creates a new settings store under the user's config directory.
func NewStore() (*Store, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	return &Store{
		configDir: configDir,
	}, nil
}

// NewStoreWithDir creates a new settings store with a custom directory.
func NewStoreWithDir(dir string) *Store {
	return &Store{
		configDir: dir,
	}
}

// getConfigDir returns the config directory path.
func getConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise ~/.config
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDirName), nil
}

// SettingsPath returns the path to the settings file.
func (s *Store) SettingsPath() string {
	return filepath.Join(s.configDir, SettingsFileName)
}

// Load loads settings from disk. A missing file yields defaults.
func (s *Store) Load() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadInternal()
}

// loadInternal loads settings without locking (caller must hold lock).
func (s *Store) loadInternal() (*Settings, error) {
	path := s.SettingsPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			settings := NewSettings()
			s.settings = settings
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	if settings.Version == "" {
		settings.Version = Version
	}

	s.settings = &settings
	return &settings, nil
}

// Save saves settings to disk atomically.
func (s *Store) Save(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveInternal(settings)
}

// saveInternal saves settings without locking (caller must hold lock).
func (s *Store) saveInternal(settings *Settings) error {
	if err := os.MkdirAll(s.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path := s.SettingsPath()
	tmpPath := path + ".tmp"

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	// Write to temp file first
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil {
			log.Printf("Warning: failed to clean up temp file %s: %v", tmpPath, removeErr)
		}
		return fmt.Errorf("failed to save settings file: %w", err)
	}

	s.settings = settings
	return nil
}

// LoadAndSave atomically loads, modifies, and saves settings. This prevents
// race conditions when multiple operations read-modify-write the file.
func (s *Store) LoadAndSave(modify func(*Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.loadInternal()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if err := modify(settings); err != nil {
		return err
	}

	return s.saveInternal(settings)
}

// Settings returns a copy of the currently loaded settings.
// Returns nil if no settings have been loaded yet.
func (s *Store) Settings() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil
	}
	// Return a copy to prevent external mutation
	return s.settings.Clone()
}
