package device

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fabricmesh/fabrictl/pkg/fabric"
	"github.com/fabricmesh/fabrictl/pkg/reconcile"
)

// FileReader reads facts from per-device YAML snapshots instead of a
// live device, so plans can run offline. A snapshot lives at
// <dir>/<hostname>.yaml:
//
//	facts:
//	  vlan/1151: {vlanid: "1151", vni: "101151"}
//	  svi/1151: {vlan: "1151", vrf: "VRF-1"}
//
// A missing snapshot file means no facts (a factory-fresh device).
type FileReader struct {
	Dir string
}

type factsFile struct {
	Facts map[string]map[string]string `yaml:"facts"`
}

// ReadFacts implements StateReader.
func (r *FileReader) ReadFacts(ctx context.Context, dev *fabric.Device) (reconcile.Facts, error) {
	path := filepath.Join(r.Dir, dev.Hostname+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(reconcile.Facts), nil
		}
		return nil, &UnreachableError{Device: dev.Hostname, Err: err}
	}

	var f factsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ParseError{Device: dev.Hostname, Detail: err.Error()}
	}

	facts := make(reconcile.Facts, len(f.Facts))
	for key, attrs := range f.Facts {
		facts.Add(key, attrs)
	}
	return facts, nil
}

// WriteSnapshot persists facts as a snapshot file, the inverse of
// ReadFacts. Used to capture a device's state for later offline plans.
func WriteSnapshot(dir, hostname string, facts reconcile.Facts) error {
	f := factsFile{Facts: make(map[string]map[string]string, len(facts))}
	for key, fact := range facts {
		f.Facts[key] = fact.Attrs
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encoding facts for %s: %w", hostname, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, hostname+".yaml"), data, 0644)
}
