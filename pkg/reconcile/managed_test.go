package reconcile_test

import (
	"testing"

	"github.com/fabricmesh/fabrictl/internal/testutil"
	"github.com/fabricmesh/fabrictl/pkg/fabric"
	. "github.com/fabricmesh/fabrictl/pkg/reconcile"
)

func TestManagedContains(t *testing.T) {
	vm := testutil.ValidatedSampleModel(t)
	m := ManagedFromModel(vm, "leaf1")

	tests := []struct {
		key      string
		expected bool
	}{
		{"vlan/1151", true},
		{"vlan/1199", true}, // inside managed_vlans even if not declared
		{"vlan/200", false},
		{"evpn-instance/1151", true},
		{"evpn-instance/4000", false},
		{"svi/1151", true},
		{"svi/200", false},
		{"nve-member/101151", true},
		{"nve-member/999999", false},
		{"vrf/VRF-1", true},
		{"vrf/MGMT", false},
		{"interface/loopback0", true},
		{"interface/Ethernet1/1", true},
		{"interface/Ethernet1/48", false},
		{"ospf-if/Ethernet1/1", true},
		{"bgp-neighbor/10.0.0.1", true},    // spine loopback
		{"bgp-neighbor/10.1.1.0", true},    // own link peer address
		{"bgp-neighbor/203.0.113.9", false},
		{"ospf/underlay", true},
		{"bgp/65001", true},
		{"bgp/65099", false},
		{"nve/1", true},
		{"fabric-forwarding/anycast-mac", true},
	}

	for _, tt := range tests {
		if got := m.Contains(tt.key); got != tt.expected {
			t.Errorf("Contains(%s) = %v, want %v", tt.key, got, tt.expected)
		}
	}
}

// Without explicit managed ranges the namespace is exactly the
// declared identifiers.
func TestManagedDefaultsToDeclared(t *testing.T) {
	model := testutil.SampleModel()
	model.ManagedVlans = ""
	model.ManagedVNIs = ""
	vm, err := fabric.Validate(model)
	if err != nil {
		t.Fatal(err)
	}

	m := ManagedFromModel(vm, "leaf1")
	if !m.Contains("vlan/1151") || !m.Contains("nve-member/401101") {
		t.Error("declared identifiers must be managed")
	}
	if m.Contains("vlan/1199") || m.Contains("nve-member/101999") {
		t.Error("undeclared identifiers must not be managed without explicit ranges")
	}
}

func TestManagedUnknownDevice(t *testing.T) {
	vm := testutil.ValidatedSampleModel(t)
	m := ManagedFromModel(vm, "leaf9")
	if m.Contains("vlan/1151") || m.Contains("ospf/underlay") {
		t.Error("unknown device must own nothing")
	}
}
