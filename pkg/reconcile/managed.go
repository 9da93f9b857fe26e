package reconcile

import (
	"strconv"

	"github.com/fabricmesh/fabrictl/pkg/fabric"
	"github.com/fabricmesh/fabrictl/pkg/render"
	"github.com/fabricmesh/fabrictl/pkg/util"
)

// Managed is the namespace of identities the fabric model owns on one
// device. The reconciler only ever removes facts inside this namespace;
// anything a device carries outside it (locally configured VLANs,
// out-of-band peerings) is left untouched.
type Managed struct {
	Device   string
	DeviceAS int

	Vlans      *util.IntRange
	VNIs       *util.IntRange
	VRFs       map[string]bool
	Interfaces map[string]bool
	Neighbors  map[string]bool
	singletons map[string]bool
}

// ManagedFromModel builds the managed namespace for one device.
// The VLAN and VNI spaces come from the model's managed_vlans /
// managed_vnis ranges; when those are unset they default to exactly the
// identifiers the model declares.
func ManagedFromModel(vm *fabric.ValidatedModel, hostname string) *Managed {
	dev := vm.Device(hostname)
	if dev == nil {
		return &Managed{Device: hostname}
	}

	m := &Managed{
		Device:     hostname,
		DeviceAS:   dev.ASNumber,
		VRFs:       make(map[string]bool),
		Interfaces: make(map[string]bool),
		Neighbors:  make(map[string]bool),
		singletons: make(map[string]bool),
	}

	// Ranges are validated with the model, so errors cannot occur here.
	m.Vlans, _ = util.ParseRange(vm.ManagedVlans)
	m.VNIs, _ = util.ParseRange(vm.ManagedVNIs)
	if m.Vlans == nil || m.Vlans.IsEmpty() {
		var ids []int
		for _, b := range vm.Vlans {
			ids = append(ids, b.ID)
		}
		m.Vlans = util.NewIntRange(ids...)
	}
	if m.VNIs == nil || m.VNIs.IsEmpty() {
		var vnis []int
		for _, b := range vm.Vlans {
			vnis = append(vnis, b.VNI)
		}
		m.VNIs = util.NewIntRange(vnis...)
	}

	for _, v := range vm.VRFs {
		m.VRFs[v.Name] = true
	}

	m.Interfaces["loopback0"] = true
	for _, l := range vm.LinksFor(hostname) {
		if l.A.Device == hostname {
			m.Interfaces[l.A.Interface] = true
		} else {
			m.Interfaces[l.B.Interface] = true
		}
	}

	// Any address the model could render as a BGP peer of this device:
	// fabric loopbacks for the overlay, link addresses for eBGP.
	for _, d := range vm.Devices {
		if d.IsFabric() {
			m.Neighbors[d.LoopbackIP()] = true
		}
	}
	for _, l := range vm.LinksFor(hostname) {
		first, second, err := util.PointToPointHosts(l.Subnet)
		if err != nil {
			continue
		}
		m.Neighbors[first] = true
		m.Neighbors[second] = true
	}

	m.singletons[render.OSPFKey()] = true
	m.singletons[render.BGPKey(dev.ASNumber)] = true
	m.singletons[render.NVEKey()] = true
	m.singletons[render.AnycastMACKey()] = true

	return m
}

// Contains reports whether a fact key falls inside the managed namespace.
func (m *Managed) Contains(key string) bool {
	id := render.KeyID(key)

	switch render.KeyClass(key) {
	case "vlan", "evpn-instance", "svi":
		v, err := strconv.Atoi(id)
		return err == nil && m.Vlans != nil && m.Vlans.Contains(v)
	case "nve-member":
		v, err := strconv.Atoi(id)
		return err == nil && m.VNIs != nil && m.VNIs.Contains(v)
	case "vrf":
		return m.VRFs[id]
	case "bgp-neighbor":
		return m.Neighbors[id]
	case "interface", "ospf-if":
		return m.Interfaces[id]
	default:
		return m.singletons[key]
	}
}
