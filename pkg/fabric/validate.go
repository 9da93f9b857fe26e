package fabric

import (
	"fmt"

	"github.com/fabricmesh/fabrictl/pkg/util"
)

// Validate checks every model-level invariant and returns a
// ValidatedModel on success. All checks run independently and their
// violations accumulate: a model with three problems yields three
// messages, not one. No rendering happens until validation passes.
func Validate(m *Model) (*ValidatedModel, error) {
	v := &util.ValidationBuilder{}

	validateDevices(m, v)
	validateLinks(m, v)
	validateBindings(m, v)
	validateVRFs(m, v)
	validateVNIRanges(m, v)
	validateManagedRanges(m, v)

	if v.HasErrors() {
		return nil, v.Build()
	}

	return &ValidatedModel{Model: m, l3vlans: m.L3VNIVlans()}, nil
}

func validateDevices(m *Model, v *util.ValidationBuilder) {
	hostnames := make(map[string]bool)
	loopbacks := make(map[string]string)
	mgmts := make(map[string]string)
	fabricAS := 0

	for _, d := range m.Devices {
		if d.Hostname == "" {
			v.AddError("device with empty hostname")
			continue
		}
		if hostnames[d.Hostname] {
			v.AddErrorf("duplicate hostname %q", d.Hostname)
		}
		hostnames[d.Hostname] = true

		switch d.Role {
		case RoleSpine, RoleLeaf, RoleExternal:
		default:
			v.AddErrorf("device %s: role must be spine, leaf, or external, got %q", d.Hostname, d.Role)
		}

		if err := util.ValidateASN(d.ASNumber); err != nil {
			v.AddErrorf("device %s: %v", d.Hostname, err)
		}

		if !util.IsValidIPv4CIDR(d.Loopback) {
			v.AddErrorf("device %s: loopback %q is not a valid IPv4 CIDR", d.Hostname, d.Loopback)
		} else if _, mask := util.SplitIPMask(d.Loopback); mask != 32 {
			v.AddErrorf("device %s: loopback %s must be a /32", d.Hostname, d.Loopback)
		} else if prev, dup := loopbacks[d.LoopbackIP()]; dup {
			v.AddErrorf("loopback %s assigned to both %s and %s", d.LoopbackIP(), prev, d.Hostname)
		} else {
			loopbacks[d.LoopbackIP()] = d.Hostname
		}

		if !util.IsValidIPv4(d.Mgmt) {
			v.AddErrorf("device %s: management address %q is not a valid IPv4 address", d.Hostname, d.Mgmt)
		} else if prev, dup := mgmts[d.Mgmt]; dup {
			v.AddErrorf("management address %s assigned to both %s and %s", d.Mgmt, prev, d.Hostname)
		} else {
			mgmts[d.Mgmt] = d.Hostname
		}

		switch d.Transport {
		case TransportSonic, TransportSSH:
		default:
			v.AddErrorf("device %s: transport must be sonic or ssh, got %q", d.Hostname, d.Transport)
		}

		// One AS for the iBGP overlay; externals must sit outside it.
		if d.IsFabric() {
			if fabricAS == 0 {
				fabricAS = d.ASNumber
			} else if d.ASNumber != fabricAS {
				v.AddErrorf("device %s: fabric AS %d differs from %d (spines and leaves share one overlay AS)",
					d.Hostname, d.ASNumber, fabricAS)
			}
		}
	}

	for _, d := range m.Devices {
		if d.Role == RoleExternal && fabricAS != 0 && d.ASNumber == fabricAS {
			v.AddErrorf("external router %s: AS %d collides with the fabric AS (external peerings are eBGP)",
				d.Hostname, d.ASNumber)
		}
	}
}

func validateLinks(m *Model, v *util.ValidationBuilder) {
	usedIfaces := make(map[string]bool) // "device/interface"

	for i, l := range m.Links {
		for _, ep := range []Endpoint{l.A, l.B} {
			if ep.Device == "" || ep.Interface == "" {
				v.AddErrorf("link %d: endpoint missing device or interface", i)
				continue
			}
			if m.Device(ep.Device) == nil {
				v.AddErrorf("link %d: endpoint device %q is not declared", i, ep.Device)
			}
			key := ep.Device + "/" + ep.Interface
			if usedIfaces[key] {
				v.AddErrorf("link %d: interface %s used by more than one link", i, key)
			}
			usedIfaces[key] = true
		}

		// The subnet must hold exactly the two endpoint addresses.
		if _, _, err := util.PointToPointHosts(l.Subnet); err != nil {
			v.AddErrorf("link %d (%s - %s): %v", i, l.A.Device, l.B.Device, err)
		}
	}
}

func validateBindings(m *Model, v *util.ValidationBuilder) {
	vlanIDs := make(map[int]bool)
	vnis := make(map[int]bool)
	l3vlans := m.L3VNIVlans()

	for _, b := range m.Vlans {
		if b.ID < 1 || b.ID > 4094 {
			v.AddErrorf("VLAN %d: id out of range 1-4094", b.ID)
		}
		if vlanIDs[b.ID] {
			v.AddErrorf("duplicate VLAN id %d", b.ID)
		}
		vlanIDs[b.ID] = true

		if b.VNI < 1 || b.VNI > 16777215 {
			v.AddErrorf("VLAN %d: VNI %d out of range 1-16777215", b.ID, b.VNI)
		}
		if vnis[b.VNI] {
			v.AddErrorf("duplicate VNI %d", b.VNI)
		}
		vnis[b.VNI] = true

		if b.Name == "" {
			v.AddErrorf("VLAN %d: name is required", b.ID)
		}

		if b.Subnet != "" && !util.IsValidIPv4CIDR(b.Subnet) {
			v.AddErrorf("VLAN %d: subnet %q is not a valid IPv4 CIDR", b.ID, b.Subnet)
		}

		if b.VRF != "" && m.VRF(b.VRF) == nil {
			v.AddErrorf("VLAN %d: VRF %q is not defined", b.ID, b.VRF)
		}

		// A binding without a subnet must be an L3VNI carrier; every
		// access binding needs a subnet for its gateway SVI.
		if b.IsL3() && !l3vlans[b.ID] {
			v.AddErrorf("VLAN %d has no subnet but no VRF declares it as L3VNI carrier", b.ID)
		}
		if !b.IsL3() && l3vlans[b.ID] {
			v.AddErrorf("VLAN %d is an L3VNI carrier and must not have a subnet", b.ID)
		}
	}
}

func validateVRFs(m *Model, v *util.ValidationBuilder) {
	names := make(map[string]bool)

	for _, vrf := range m.VRFs {
		if vrf.Name == "" {
			v.AddError("VRF with empty name")
			continue
		}
		if names[vrf.Name] {
			v.AddErrorf("duplicate VRF %q", vrf.Name)
		}
		names[vrf.Name] = true

		if !util.IsValidRouteTarget(vrf.RD) {
			v.AddErrorf("VRF %s: route-distinguisher %q must match ASN:NN or IP:NN", vrf.Name, vrf.RD)
		}
		for _, rt := range vrf.ImportTargets {
			if !util.IsValidRouteTarget(rt) {
				v.AddErrorf("VRF %s: import route-target %q must match ASN:NN or IP:NN", vrf.Name, rt)
			}
		}
		for _, rt := range vrf.ExportTargets {
			if !util.IsValidRouteTarget(rt) {
				v.AddErrorf("VRF %s: export route-target %q must match ASN:NN or IP:NN", vrf.Name, rt)
			}
		}

		if m.Binding(vrf.L3VNIVlan) == nil {
			v.AddErrorf("VRF %s: L3VNI VLAN %d has no VLAN binding", vrf.Name, vrf.L3VNIVlan)
		}

		// Access subnets inside one VRF must not overlap.
		var members []*VlanBinding
		for _, b := range m.Vlans {
			if b.VRF == vrf.Name && !b.IsL3() {
				members = append(members, b)
			}
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				if util.SubnetsOverlap(members[i].Subnet, members[j].Subnet) {
					v.AddErrorf("VRF %s: subnets of VLAN %d (%s) and VLAN %d (%s) overlap",
						vrf.Name, members[i].ID, members[i].Subnet, members[j].ID, members[j].Subnet)
				}
			}
		}
	}
}

func validateVNIRanges(m *Model, v *util.ValidationBuilder) {
	if m.L2VNIRange == "" && m.L3VNIRange == "" {
		return
	}

	l2, err := util.ParseRange(m.L2VNIRange)
	if err != nil {
		v.AddErrorf("l2_vni_range: %v", err)
		return
	}
	l3, err := util.ParseRange(m.L3VNIRange)
	if err != nil {
		v.AddErrorf("l3_vni_range: %v", err)
		return
	}

	if l2.Overlaps(l3) {
		v.AddErrorf("l2_vni_range %s and l3_vni_range %s overlap", m.L2VNIRange, m.L3VNIRange)
	}

	l3vlans := m.L3VNIVlans()
	for _, b := range m.Vlans {
		if l3vlans[b.ID] {
			if !l3.IsEmpty() && !l3.Contains(b.VNI) {
				v.AddErrorf("VLAN %d: L3VNI %d outside l3_vni_range %s", b.ID, b.VNI, m.L3VNIRange)
			}
		} else {
			if !l2.IsEmpty() && !l2.Contains(b.VNI) {
				v.AddErrorf("VLAN %d: L2VNI %d outside l2_vni_range %s", b.ID, b.VNI, m.L2VNIRange)
			}
		}
	}
}

func validateManagedRanges(m *Model, v *util.ValidationBuilder) {
	vlans, err := util.ParseRange(m.ManagedVlans)
	if err != nil {
		v.AddErrorf("managed_vlans: %v", err)
		vlans = nil
	}
	vnis, err := util.ParseRange(m.ManagedVNIs)
	if err != nil {
		v.AddErrorf("managed_vnis: %v", err)
		vnis = nil
	}

	// Declared identifiers must fall inside the managed namespace,
	// otherwise the reconciler could apply what it may never remove.
	for _, b := range m.Vlans {
		if vlans != nil && !vlans.IsEmpty() && !vlans.Contains(b.ID) {
			v.AddErrorf("VLAN %d declared outside managed_vlans %s", b.ID, m.ManagedVlans)
		}
		if vnis != nil && !vnis.IsEmpty() && !vnis.Contains(b.VNI) {
			v.AddErrorf("VNI %d declared outside managed_vnis %s", b.VNI, m.ManagedVNIs)
		}
	}
}

// Describe returns a one-line summary of the model, used by the CLI.
func (m *Model) Describe() string {
	return fmt.Sprintf("fabric %s: %d devices, %d links, %d VLANs, %d VRFs",
		m.Name, len(m.Devices), len(m.Links), len(m.Vlans), len(m.VRFs))
}
