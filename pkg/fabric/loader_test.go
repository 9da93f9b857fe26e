package fabric

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
name: dc1
managed_vlans: "1101,1151-1199"
managed_vnis: "101000-102000,401000-402000"
l2_vni_range: "101000-102000"
l3_vni_range: "401000-402000"
anycast_gateway_mac: "00:00:11:11:22:22"
devices:
  - hostname: spine1
    role: spine
    as_number: 65001
    loopback: 10.0.0.1/32
    mgmt: 172.20.0.11
  - hostname: leaf1
    role: leaf
    as_number: 65001
    loopback: 10.0.0.11/32
    mgmt: 172.20.0.21
    transport: ssh
    ssh_user: admin
links:
  - a: {device: spine1, interface: Ethernet1/1}
    b: {device: leaf1, interface: Ethernet1/1}
    subnet: 10.1.1.0/31
vrfs:
  - name: VRF-1
    rd: 10.0.0.11:1
    import_targets: ["65001:401101"]
    export_targets: ["65001:401101"]
    l3vni_vlan: 1101
vlans:
  - id: 1101
    name: l3vni-vrf-1
    vni: 401101
    vrf: VRF-1
  - id: 1151
    name: servers-1
    vni: 101151
    subnet: 192.168.1.0/25
    vrf: VRF-1
    arp_suppression: true
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fabric.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Name != "dc1" {
		t.Errorf("Name = %q, want dc1", m.Name)
	}
	if len(m.Devices) != 2 || len(m.Links) != 1 || len(m.Vlans) != 2 || len(m.VRFs) != 1 {
		t.Errorf("unexpected counts: %s", m.Describe())
	}

	// Defaults applied during parse.
	if m.OSPFArea != "0.0.0.0" {
		t.Errorf("OSPFArea = %q, want default 0.0.0.0", m.OSPFArea)
	}
	if m.Device("spine1").Transport != TransportSonic {
		t.Error("missing transport should default to sonic")
	}
	if m.Device("leaf1").Transport != TransportSSH {
		t.Error("explicit transport should be preserved")
	}

	b := m.Binding(1151)
	if b == nil || !b.ARPSuppression || b.Subnet != "192.168.1.0/25" {
		t.Errorf("binding 1151 parsed wrong: %+v", b)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed yaml", "name: [unclosed"},
		{"missing name", "devices:\n  - hostname: leaf1"},
		{"no devices", "name: dc1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}
