package fabric

import (
	"errors"
	"strings"
	"testing"

	"github.com/fabricmesh/fabrictl/pkg/util"
)

func validModel() *Model {
	return &Model{
		Name:              "dc1",
		ManagedVlans:      "1101,1151-1199",
		ManagedVNIs:       "101000-102000,401000-402000",
		L2VNIRange:        "101000-102000",
		L3VNIRange:        "401000-402000",
		OSPFArea:          "0.0.0.0",
		AnycastGatewayMAC: "00:00:11:11:22:22",
		Devices: []*Device{
			{Hostname: "spine1", Role: RoleSpine, ASNumber: 65001, Loopback: "10.0.0.1/32", Mgmt: "172.20.0.11", Transport: TransportSonic},
			{Hostname: "leaf1", Role: RoleLeaf, ASNumber: 65001, Loopback: "10.0.0.11/32", Mgmt: "172.20.0.21", Transport: TransportSonic},
			{Hostname: "edge1", Role: RoleExternal, ASNumber: 65099, Loopback: "10.0.0.99/32", Mgmt: "172.20.0.99", Transport: TransportSSH},
		},
		Links: []*UnderlayLink{
			{A: Endpoint{Device: "spine1", Interface: "Ethernet1/1"}, B: Endpoint{Device: "leaf1", Interface: "Ethernet1/1"}, Subnet: "10.1.1.0/31"},
			{A: Endpoint{Device: "spine1", Interface: "Ethernet1/10"}, B: Endpoint{Device: "edge1", Interface: "GigabitEthernet0/0"}, Subnet: "10.250.1.0/30"},
		},
		VRFs: []*VrfDefinition{
			{Name: "VRF-1", RD: "10.0.0.11:1", ImportTargets: []string{"65001:401101"}, ExportTargets: []string{"65001:401101"}, L3VNIVlan: 1101},
		},
		Vlans: []*VlanBinding{
			{ID: 1101, Name: "l3vni-vrf-1", VNI: 401101, VRF: "VRF-1"},
			{ID: 1151, Name: "servers-1", VNI: 101151, Subnet: "192.168.1.0/25", VRF: "VRF-1"},
			{ID: 1152, Name: "servers-2", VNI: 101152, Subnet: "192.168.2.0/25", VRF: "VRF-1"},
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	vm, err := Validate(validModel())
	if err != nil {
		t.Fatalf("valid model rejected: %v", err)
	}
	if !vm.IsL3VNIVlan(1101) {
		t.Error("VLAN 1101 should be an L3VNI carrier")
	}
	if vm.IsL3VNIVlan(1151) {
		t.Error("VLAN 1151 should not be an L3VNI carrier")
	}
}

// Three independent problems must yield three messages, not a stop at
// the first.
func TestValidateAccumulates(t *testing.T) {
	m := validModel()
	m.Devices[1].Loopback = "10.0.0.1/32"                       // duplicate loopback
	m.Vlans[2].VNI = 101151                                     // duplicate VNI
	m.VRFs[0].RD = "not-an-rd"                                  // bad RD syntax
	_, err := Validate(m)
	if err == nil {
		t.Fatal("expected validation failure")
	}

	var verr *util.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %T, want *util.ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Fatalf("got %d errors, want 3:\n%v", len(verr.Errors), err)
	}
	if !errors.Is(err, util.ErrValidationFailed) {
		t.Error("should unwrap to ErrValidationFailed")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Model)
		want   string
	}{
		{"duplicate hostname", func(m *Model) { m.Devices[1].Hostname = "spine1" }, "duplicate hostname"},
		{"bad role", func(m *Model) { m.Devices[0].Role = "superspine" }, "role must be"},
		{"bad asn", func(m *Model) { m.Devices[0].ASNumber = 0 }, "AS number"},
		{"loopback not /32", func(m *Model) { m.Devices[0].Loopback = "10.0.0.1/24" }, "must be a /32"},
		{"duplicate mgmt", func(m *Model) { m.Devices[1].Mgmt = "172.20.0.11" }, "management address"},
		{"bad transport", func(m *Model) { m.Devices[0].Transport = "telnet" }, "transport must be"},
		{"split fabric AS", func(m *Model) { m.Devices[1].ASNumber = 65002 }, "share one overlay AS"},
		{"external AS collision", func(m *Model) { m.Devices[2].ASNumber = 65001 }, "collides with the fabric AS"},
		{"undeclared link device", func(m *Model) { m.Links[0].B.Device = "leaf9" }, "not declared"},
		{"interface reuse", func(m *Model) { m.Links[1].A.Interface = "Ethernet1/1" }, "more than one link"},
		{"link subnet not p2p", func(m *Model) { m.Links[0].Subnet = "10.1.1.0/24" }, "point-to-point"},
		{"vlan id out of range", func(m *Model) { m.Vlans[1].ID = 5000 }, "out of range 1-4094"},
		{"duplicate vlan id", func(m *Model) { m.Vlans[2].ID = 1151 }, "duplicate VLAN id"},
		{"duplicate vni", func(m *Model) { m.Vlans[2].VNI = 101151 }, "duplicate VNI"},
		{"vlan name required", func(m *Model) { m.Vlans[1].Name = "" }, "name is required"},
		{"bad subnet", func(m *Model) { m.Vlans[1].Subnet = "bogus" }, "not a valid IPv4 CIDR"},
		{"undefined vrf", func(m *Model) { m.Vlans[1].VRF = "VRF-9" }, "not defined"},
		{"carrier with subnet", func(m *Model) { m.Vlans[0].Subnet = "192.168.9.0/25" }, "must not have a subnet"},
		{"access without subnet", func(m *Model) { m.Vlans[1].Subnet = "" }, "no VRF declares it"},
		{"bad rd", func(m *Model) { m.VRFs[0].RD = "65001" }, "route-distinguisher"},
		{"bad import rt", func(m *Model) { m.VRFs[0].ImportTargets = []string{"x:y"} }, "import route-target"},
		{"carrier vlan missing", func(m *Model) { m.VRFs[0].L3VNIVlan = 1109 }, "no VLAN binding"},
		{"overlapping vrf subnets", func(m *Model) { m.Vlans[2].Subnet = "192.168.1.64/26" }, "overlap"},
		{"l2 vni in l3 space", func(m *Model) { m.Vlans[1].VNI = 401500 }, "outside l2_vni_range"},
		{"l3 vni in l2 space", func(m *Model) { m.Vlans[0].VNI = 101500 }, "outside l3_vni_range"},
		{"vni ranges overlap", func(m *Model) { m.L3VNIRange = "101500-402000" }, "overlap"},
		{"vlan outside managed", func(m *Model) { m.ManagedVlans = "2000-2099" }, "outside managed_vlans"},
		{"vni outside managed", func(m *Model) { m.ManagedVNIs = "500000-500100" }, "outside managed_vnis"},
		{"bad managed range", func(m *Model) { m.ManagedVlans = "abc" }, "managed_vlans"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModel()
			tt.mutate(m)
			_, err := Validate(m)
			if err == nil {
				t.Fatal("expected validation failure")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestModelAccessors(t *testing.T) {
	m := validModel()

	if m.FabricAS() != 65001 {
		t.Errorf("FabricAS() = %d, want 65001", m.FabricAS())
	}
	if d := m.Device("leaf1"); d == nil || d.LoopbackIP() != "10.0.0.11" {
		t.Error("Device(leaf1) lookup failed")
	}
	if m.Device("leaf9") != nil {
		t.Error("Device(leaf9) should be nil")
	}

	spines := m.DevicesByRole(RoleSpine)
	if len(spines) != 1 || spines[0].Hostname != "spine1" {
		t.Errorf("DevicesByRole(spine) = %v", spines)
	}

	links := m.LinksFor("spine1")
	if len(links) != 2 {
		t.Errorf("LinksFor(spine1) returned %d links, want 2", len(links))
	}
	if len(m.LinksFor("leaf1")) != 1 {
		t.Error("LinksFor(leaf1) should return 1 link")
	}
}
