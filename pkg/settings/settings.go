// Package settings manages persistent user settings for the fabrictl CLI.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings holds persistent user preferences.
type Settings struct {
	// DefaultFabric is the fabric file to use when --fabric is not given.
	DefaultFabric string `json:"default_fabric,omitempty"`

	// AuditLog overrides the default audit log location.
	AuditLog string `json:"audit_log,omitempty"`

	// FactsDir is the default directory for offline facts snapshots.
	FactsDir string `json:"facts_dir,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fabrictl_settings.json"
	}
	return filepath.Join(home, ".fabrictl", "settings.json")
}

// DefaultAuditPath returns the default audit log location.
func DefaultAuditPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fabrictl_audit.jsonl"
	}
	return filepath.Join(home, ".fabrictl", "audit.jsonl")
}

// Load reads settings from the default location.
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path. A missing file yields
// empty settings, not an error.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location.
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path.
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
