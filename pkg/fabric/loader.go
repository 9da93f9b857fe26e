package fabric

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load parses a fabric description YAML file into an unvalidated Model.
// Only structural problems (unreadable file, malformed YAML, missing
// top-level sections) are reported here; semantic checks accumulate in
// Validate so an operator sees every violation in one pass.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fabric file: %w", err)
	}
	return Parse(data)
}

// Parse parses fabric description YAML from memory.
func Parse(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing fabric YAML: %w", err)
	}

	if m.Name == "" {
		return nil, fmt.Errorf("fabric name is required")
	}
	if len(m.Devices) == 0 {
		return nil, fmt.Errorf("at least one device is required")
	}

	// Default fields that have a single sensible value.
	if m.OSPFArea == "" {
		m.OSPFArea = "0.0.0.0"
	}
	for _, d := range m.Devices {
		if d.Transport == "" {
			d.Transport = TransportSonic
		}
	}

	return &m, nil
}
