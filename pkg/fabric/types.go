// Package fabric defines the declarative fabric model: devices, underlay
// links, VLAN/VNI bindings, and VRF definitions. The model is pure data,
// loaded from a YAML description and frozen by validation; rendering and
// reconciliation operate on a ValidatedModel and never mutate it.
package fabric

import (
	"sort"

	"github.com/fabricmesh/fabrictl/pkg/util"
)

// Role identifies a device's place in the fabric.
type Role string

const (
	// RoleSpine is a spine switch acting as BGP EVPN route reflector.
	RoleSpine Role = "spine"
	// RoleLeaf is a leaf switch acting as VTEP.
	RoleLeaf Role = "leaf"
	// RoleExternal is a router outside the fabric, peered via eBGP.
	RoleExternal Role = "external"
)

// Transport selects how the management plane reaches a device.
type Transport string

const (
	// TransportSonic reads and writes SONiC CONFIG_DB over Redis,
	// optionally through an SSH tunnel.
	TransportSonic Transport = "sonic"
	// TransportSSH pushes rendered CLI text over an SSH session.
	TransportSSH Transport = "ssh"
)

// Device is one switch or router in the fabric description.
type Device struct {
	Hostname string `yaml:"hostname"`
	Role     Role   `yaml:"role"`
	ASNumber int    `yaml:"as_number"`
	Loopback string `yaml:"loopback"` // CIDR, e.g. "10.0.0.1/32"
	Mgmt     string `yaml:"mgmt"`

	// Management transport. Defaults to "sonic" when empty.
	Transport Transport `yaml:"transport,omitempty"`
	SSHUser   string    `yaml:"ssh_user,omitempty"`
	SSHPass   string    `yaml:"ssh_pass,omitempty"`
}

// LoopbackIP returns the loopback address without its mask.
func (d *Device) LoopbackIP() string {
	ip, _ := util.SplitIPMask(d.Loopback)
	return ip
}

// IsFabric reports whether the device participates in the fabric's
// iBGP overlay (spines and leaves, not external routers).
func (d *Device) IsFabric() bool {
	return d.Role == RoleSpine || d.Role == RoleLeaf
}

// Endpoint names one side of an underlay link.
type Endpoint struct {
	Device    string `yaml:"device"`
	Interface string `yaml:"interface"`
}

// UnderlayLink is a point-to-point connection between two devices.
// The subnet must be a /31 or /30 containing exactly the two endpoint
// addresses: A gets the lower host, B the higher.
type UnderlayLink struct {
	A      Endpoint `yaml:"a"`
	B      Endpoint `yaml:"b"`
	Subnet string   `yaml:"subnet"`
}

// VlanBinding maps a VLAN to a VXLAN segment. A binding without a subnet
// is an L3VNI carrier (referenced by a VrfDefinition); a binding with a
// subnet is an access VLAN with a distributed anycast gateway.
type VlanBinding struct {
	ID             int    `yaml:"id"`
	Name           string `yaml:"name"`
	VNI            int    `yaml:"vni"`
	Subnet         string `yaml:"subnet,omitempty"`
	VRF            string `yaml:"vrf,omitempty"`
	ARPSuppression bool   `yaml:"arp_suppression,omitempty"`
}

// IsL3 reports whether the binding carries an L3VNI (no subnet).
func (b *VlanBinding) IsL3() bool {
	return b.Subnet == ""
}

// VrfDefinition is a tenant VRF with its EVPN route exchange scope.
type VrfDefinition struct {
	Name          string   `yaml:"name"`
	RD            string   `yaml:"rd"`
	ImportTargets []string `yaml:"import_targets"`
	ExportTargets []string `yaml:"export_targets"`
	L3VNIVlan     int      `yaml:"l3vni_vlan"`
}

// Model is the full declarative fabric description. It is built once
// from the fabric file and must pass Validate before rendering; any
// change means loading and validating a fresh instance.
type Model struct {
	Name string `yaml:"name"`

	// Managed namespaces. Facts outside these ranges are never touched
	// by the reconciler. When empty, the managed namespace defaults to
	// exactly the identifiers the model declares.
	ManagedVlans string `yaml:"managed_vlans,omitempty"`
	ManagedVNIs  string `yaml:"managed_vnis,omitempty"`

	// Optional disjoint number spaces for L2 and L3 VNIs.
	L2VNIRange string `yaml:"l2_vni_range,omitempty"`
	L3VNIRange string `yaml:"l3_vni_range,omitempty"`

	OSPFArea          string `yaml:"ospf_area,omitempty"`
	AnycastGatewayMAC string `yaml:"anycast_gateway_mac,omitempty"`

	// EBGPMultihop sets the multihop TTL on external peerings.
	// Zero means directly connected (no multihop).
	EBGPMultihop int `yaml:"ebgp_multihop,omitempty"`

	Devices []*Device        `yaml:"devices"`
	Links   []*UnderlayLink  `yaml:"links,omitempty"`
	Vlans   []*VlanBinding   `yaml:"vlans,omitempty"`
	VRFs    []*VrfDefinition `yaml:"vrfs,omitempty"`
}

// Device returns the device with the given hostname, or nil.
func (m *Model) Device(hostname string) *Device {
	for _, d := range m.Devices {
		if d.Hostname == hostname {
			return d
		}
	}
	return nil
}

// VRF returns the VRF definition with the given name, or nil.
func (m *Model) VRF(name string) *VrfDefinition {
	for _, v := range m.VRFs {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Binding returns the VLAN binding with the given VLAN id, or nil.
func (m *Model) Binding(vlanID int) *VlanBinding {
	for _, b := range m.Vlans {
		if b.ID == vlanID {
			return b
		}
	}
	return nil
}

// FabricAS returns the iBGP overlay AS number shared by spines and
// leaves, or 0 if the model has no fabric devices.
func (m *Model) FabricAS() int {
	for _, d := range m.Devices {
		if d.IsFabric() {
			return d.ASNumber
		}
	}
	return 0
}

// DevicesByRole returns devices with the given role, sorted by hostname.
func (m *Model) DevicesByRole(role Role) []*Device {
	var out []*Device
	for _, d := range m.Devices {
		if d.Role == role {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hostname < out[j].Hostname })
	return out
}

// LinksFor returns the links that have hostname as an endpoint.
func (m *Model) LinksFor(hostname string) []*UnderlayLink {
	var out []*UnderlayLink
	for _, l := range m.Links {
		if l.A.Device == hostname || l.B.Device == hostname {
			out = append(out, l)
		}
	}
	return out
}

// L3VNIVlans returns the set of VLAN ids that carry an L3VNI (i.e. are
// referenced by some VRF definition).
func (m *Model) L3VNIVlans() map[int]bool {
	out := make(map[int]bool)
	for _, v := range m.VRFs {
		out[v.L3VNIVlan] = true
	}
	return out
}

// ValidatedModel wraps a Model that has passed validation. Obtain one
// only through Validate; downstream stages take a ValidatedModel so an
// unvalidated model cannot reach rendering.
type ValidatedModel struct {
	*Model

	l3vlans map[int]bool
}

// IsL3VNIVlan reports whether the VLAN id carries an L3VNI.
func (vm *ValidatedModel) IsL3VNIVlan(id int) bool {
	return vm.l3vlans[id]
}
