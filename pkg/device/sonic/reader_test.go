package sonic

import (
	"errors"
	"testing"

	"github.com/fabricmesh/fabrictl/pkg/render"
	"github.com/fabricmesh/fabrictl/pkg/util"
)

func TestFactsFromConfigDB(t *testing.T) {
	db := map[string]map[string]string{
		"VLAN|Vlan1151":                            {"vlanid": "1151", "description": "servers-1"},
		"VXLAN_TUNNEL|vtep":                        {"src_ip": "10.0.0.11"},
		"VXLAN_TUNNEL_MAP|vtep|map_101151_Vlan1151": {"vni": "101151", "vlan": "Vlan1151"},
		"VRF|VRF-1":                                {"vni": "401101"},
		"VLAN_INTERFACE|Vlan1151":                  {"vrf_name": "VRF-1"},
		"VLAN_INTERFACE|Vlan1151|192.168.1.1/25":   {"NULL": "NULL"},
		"BGP_GLOBALS|default":                      {"local_asn": "65001", "router_id": "10.0.0.11"},
		"BGP_NEIGHBOR|default|10.0.0.1":            {"asn": "65001"},
		"BGP_EVPN_VNI|default|101151":              {"vni": "101151"},
		"INTERFACE|Ethernet1/1":                    {"NULL": "NULL"},
		"INTERFACE|Ethernet1/1|10.1.1.1/31":        {"NULL": "NULL"},
		"LOOPBACK_INTERFACE|Loopback0":             {"NULL": "NULL"},
		"LOOPBACK_INTERFACE|Loopback0|10.0.0.11/32": {"NULL": "NULL"},
		"OSPF_ROUTER|default":                      {"router_id": "10.0.0.11"},
		"OSPF_ROUTER_INTERFACE|Ethernet1/1":        {"area": "0.0.0.0"},
		"SAG_GLOBAL|IP":                            {"gwmac": "00:00:11:11:22:22"},
		// Tables the fabric model does not manage are skipped silently.
		"PORT|Ethernet0":      {"admin_status": "up"},
		"DEVICE_METADATA|localhost": {"hostname": "leaf1"},
	}

	facts, err := FactsFromConfigDB("leaf1", db)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key  string
		attr string
		want string
	}{
		{render.VLANKey(1151), "name", "servers-1"},
		{render.NVEKey(), "src_ip", "10.0.0.11"},
		{render.NVEMemberKey(101151), "vlan", "1151"},
		{render.VRFKey("VRF-1"), "vni", "401101"},
		{render.SVIKey(1151), "vrf", "VRF-1"},
		{render.SVIKey(1151), "ip", "192.168.1.1/25"},
		{render.BGPKey(65001), "router_id", "10.0.0.11"},
		{render.NeighborKey("10.0.0.1"), "remote_as", "65001"},
		{render.EVPNInstanceKey(1151), "vni", "101151"},
		{render.InterfaceKey("Ethernet1/1"), "ip", "10.1.1.1/31"},
		{render.InterfaceKey("loopback0"), "ip", "10.0.0.11/32"},
		{render.OSPFKey(), "router_id", "10.0.0.11"},
		{render.OSPFIfKey("Ethernet1/1"), "area", "0.0.0.0"},
		{render.AnycastMACKey(), "mac", "00:00:11:11:22:22"},
	}

	for _, tt := range tests {
		fact, ok := facts[tt.key]
		if !ok {
			t.Errorf("missing fact %s", tt.key)
			continue
		}
		if got := fact.Attrs[tt.attr]; got != tt.want {
			t.Errorf("%s attr %s = %q, want %q", tt.key, tt.attr, got, tt.want)
		}
	}

	for _, absent := range []string{"interface/Ethernet0", "port/Ethernet0"} {
		if _, ok := facts[absent]; ok {
			t.Errorf("unmanaged table leaked into facts as %s", absent)
		}
	}
}

// A bare "<ip>" neighbor key (older bgpcfgd builds) maps the same as
// the "default|<ip>" form.
func TestFactsFromConfigDBBareNeighborKey(t *testing.T) {
	db := map[string]map[string]string{
		"BGP_NEIGHBOR|10.0.0.2": {"asn": "65001"},
	}
	facts, err := FactsFromConfigDB("leaf1", db)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := facts[render.NeighborKey("10.0.0.2")]; !ok {
		t.Error("bare neighbor key not mapped")
	}
}

// An EVPN VNI with no tunnel map entry cannot be keyed by VLAN and is
// treated as unmanaged.
func TestFactsFromConfigDBOrphanEVPNInstance(t *testing.T) {
	db := map[string]map[string]string{
		"BGP_EVPN_VNI|default|909090": {"vni": "909090"},
	}
	facts, err := FactsFromConfigDB("leaf1", db)
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 0 {
		t.Errorf("orphan EVPN instance should be skipped, got %v", facts)
	}
}

func TestFactsFromConfigDBMalformed(t *testing.T) {
	tests := []struct {
		name string
		db   map[string]map[string]string
	}{
		{"bad vlan key", map[string]map[string]string{"VLAN|notavlan": {}}},
		{"bad tunnel map key", map[string]map[string]string{"VXLAN_TUNNEL_MAP|vtep|garbage": {}}},
		{"bad bgp asn", map[string]map[string]string{"BGP_GLOBALS|default": {"local_asn": "xyz"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FactsFromConfigDB("leaf1", tt.db)
			if !errors.Is(err, util.ErrParseFailed) {
				t.Errorf("got %v, want parse failure", err)
			}
		})
	}
}
