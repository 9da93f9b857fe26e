// Package render turns a validated fabric model into the ordered
// per-device configuration statements for that device's role.
package render

import (
	"fmt"
	"strings"

	"github.com/fabricmesh/fabrictl/pkg/util"
)

// Layer is the configuration layer a statement belongs to. Layers are
// strictly ordered: a statement may only depend on identities
// established in the same or an earlier layer, so sorting by layer is
// always a valid coarse ordering.
type Layer int

const (
	LayerInterface Layer = iota // underlay interface and IP
	LayerOSPF                   // OSPF process and interface enablement
	LayerBGP                    // BGP process, neighbors, EVPN address-family
	LayerVRF                    // tenant VRF definitions
	LayerVLAN                   // VLAN declarations
	LayerEVPN                   // L2VPN EVPN instances
	LayerNVE                    // NVE interface and VNI memberships
	LayerSVI                    // gateway SVIs
)

func (l Layer) String() string {
	switch l {
	case LayerInterface:
		return "interface"
	case LayerOSPF:
		return "ospf"
	case LayerBGP:
		return "bgp"
	case LayerVRF:
		return "vrf"
	case LayerVLAN:
		return "vlan"
	case LayerEVPN:
		return "evpn"
	case LayerNVE:
		return "nve"
	case LayerSVI:
		return "svi"
	}
	return fmt.Sprintf("layer(%d)", int(l))
}

// Statement is one ordered, idempotent unit of device configuration.
//
// Key is the statement's semantic identity (e.g. "vlan/1151"), shared
// with the fact key space so the reconciler can match desired against
// actual without comparing literal text. Text is the CLI rendering for
// command-channel transports; Attrs is the structured rendering for
// table-driven transports such as SONiC CONFIG_DB. DependsOn lists the
// keys of statements that must be applied first.
type Statement struct {
	Layer     Layer
	Key       string
	Text      string
	Attrs     map[string]string
	DependsOn []string
}

// Semantic identity keys. Each class prefix names one kind of managed
// object; the suffix is the object's identifier.

func InterfaceKey(name string) string  { return "interface/" + name }
func OSPFIfKey(name string) string     { return "ospf-if/" + name }
func OSPFKey() string                  { return "ospf/underlay" }
func BGPKey(as int) string             { return fmt.Sprintf("bgp/%d", as) }
func NeighborKey(ip string) string     { return "bgp-neighbor/" + ip }
func VRFKey(name string) string        { return "vrf/" + name }
func VLANKey(id int) string            { return fmt.Sprintf("vlan/%d", id) }
func EVPNInstanceKey(vlan int) string  { return fmt.Sprintf("evpn-instance/%d", vlan) }
func NVEKey() string                   { return "nve/1" }
func NVEMemberKey(vni int) string      { return fmt.Sprintf("nve-member/%d", vni) }
func SVIKey(vlan int) string           { return fmt.Sprintf("svi/%d", vlan) }
func AnycastMACKey() string            { return "fabric-forwarding/anycast-mac" }

// KeyClass returns the class prefix of a semantic identity key.
func KeyClass(key string) string {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[:i]
	}
	return key
}

// KeyID returns the identifier suffix of a semantic identity key.
func KeyID(key string) string {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return ""
}

// LayerForKey maps a key class back to its configuration layer. Used by
// the reconciler to order removals for facts it did not render itself.
func LayerForKey(key string) Layer {
	switch KeyClass(key) {
	case "interface":
		return LayerInterface
	case "ospf", "ospf-if":
		return LayerOSPF
	case "bgp", "bgp-neighbor":
		return LayerBGP
	case "vrf":
		return LayerVRF
	case "vlan", "fabric-forwarding":
		return LayerVLAN
	case "evpn-instance":
		return LayerEVPN
	case "nve", "nve-member":
		return LayerNVE
	case "svi":
		return LayerSVI
	}
	return LayerSVI
}

// Error reports a rendering failure. Rendering only fails on dangling
// references that validation should have caught, so an Error indicates
// a validator gap and is treated as fatal.
type Error struct {
	Device string
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("render %s: %s", e.Device, e.Msg)
}

func (e *Error) Unwrap() error {
	return util.ErrRenderFailed
}
