// Package testutil provides shared fixtures and fakes for tests.
package testutil

import (
	"testing"

	"github.com/fabricmesh/fabrictl/pkg/fabric"
)

// SampleModel builds a small but complete fabric: two spines, two
// leaves, one external router, one tenant VRF carried on VLAN 1101 with
// access VLANs 1151-1153.
func SampleModel() *fabric.Model {
	return &fabric.Model{
		Name:              "dc1",
		ManagedVlans:      "1101,1151-1199",
		ManagedVNIs:       "101000-102000,401000-402000",
		L2VNIRange:        "101000-102000",
		L3VNIRange:        "401000-402000",
		OSPFArea:          "0.0.0.0",
		AnycastGatewayMAC: "00:00:11:11:22:22",
		Devices: []*fabric.Device{
			{Hostname: "spine1", Role: fabric.RoleSpine, ASNumber: 65001, Loopback: "10.0.0.1/32", Mgmt: "172.20.0.11", Transport: fabric.TransportSonic},
			{Hostname: "spine2", Role: fabric.RoleSpine, ASNumber: 65001, Loopback: "10.0.0.2/32", Mgmt: "172.20.0.12", Transport: fabric.TransportSonic},
			{Hostname: "leaf1", Role: fabric.RoleLeaf, ASNumber: 65001, Loopback: "10.0.0.11/32", Mgmt: "172.20.0.21", Transport: fabric.TransportSonic},
			{Hostname: "leaf2", Role: fabric.RoleLeaf, ASNumber: 65001, Loopback: "10.0.0.12/32", Mgmt: "172.20.0.22", Transport: fabric.TransportSonic},
			{Hostname: "edge1", Role: fabric.RoleExternal, ASNumber: 65099, Loopback: "10.0.0.99/32", Mgmt: "172.20.0.99", Transport: fabric.TransportSSH},
		},
		Links: []*fabric.UnderlayLink{
			{A: fabric.Endpoint{Device: "spine1", Interface: "Ethernet1/1"}, B: fabric.Endpoint{Device: "leaf1", Interface: "Ethernet1/1"}, Subnet: "10.1.1.0/31"},
			{A: fabric.Endpoint{Device: "spine1", Interface: "Ethernet1/2"}, B: fabric.Endpoint{Device: "leaf2", Interface: "Ethernet1/1"}, Subnet: "10.1.1.2/31"},
			{A: fabric.Endpoint{Device: "spine2", Interface: "Ethernet1/1"}, B: fabric.Endpoint{Device: "leaf1", Interface: "Ethernet1/2"}, Subnet: "10.1.1.4/31"},
			{A: fabric.Endpoint{Device: "spine2", Interface: "Ethernet1/2"}, B: fabric.Endpoint{Device: "leaf2", Interface: "Ethernet1/2"}, Subnet: "10.1.1.6/31"},
			{A: fabric.Endpoint{Device: "spine1", Interface: "Ethernet1/10"}, B: fabric.Endpoint{Device: "edge1", Interface: "GigabitEthernet0/0"}, Subnet: "10.250.1.0/30"},
		},
		VRFs: []*fabric.VrfDefinition{
			{
				Name:          "VRF-1",
				RD:            "10.0.0.11:1",
				ImportTargets: []string{"65001:401101"},
				ExportTargets: []string{"65001:401101"},
				L3VNIVlan:     1101,
			},
		},
		Vlans: []*fabric.VlanBinding{
			{ID: 1101, Name: "l3vni-vrf-1", VNI: 401101, VRF: "VRF-1"},
			{ID: 1151, Name: "servers-1", VNI: 101151, Subnet: "192.168.1.0/25", VRF: "VRF-1", ARPSuppression: true},
			{ID: 1152, Name: "servers-2", VNI: 101152, Subnet: "192.168.2.0/25", VRF: "VRF-1"},
			{ID: 1153, Name: "servers-3", VNI: 101153, Subnet: "192.168.3.0/25", VRF: "VRF-1"},
		},
	}
}

// ValidatedSampleModel returns the sample model after validation,
// failing the test if validation rejects it.
func ValidatedSampleModel(t *testing.T) *fabric.ValidatedModel {
	t.Helper()
	vm, err := fabric.Validate(SampleModel())
	if err != nil {
		t.Fatalf("sample model failed validation: %v", err)
	}
	return vm
}
