package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fabricmesh/fabrictl/pkg/fabric"
	"github.com/fabricmesh/fabrictl/pkg/util"
)

// Render produces the ordered configuration statements for one device.
//
// Rendering is deterministic: two calls over the same model produce
// byte-identical statement sequences, so output can be diffed against a
// prior run. Role branching:
//
//	spine:    underlay + OSPF + BGP with route-reflector-client neighbors
//	leaf:     full stack (underlay, OSPF, BGP, VRF, VLAN, EVPN, NVE, SVI)
//	external: underlay + eBGP peering only
func Render(vm *fabric.ValidatedModel, hostname string) ([]Statement, error) {
	dev := vm.Device(hostname)
	if dev == nil {
		return nil, &Error{Device: hostname, Msg: "device not declared in fabric model"}
	}

	r := &renderer{vm: vm, dev: dev}

	r.renderInterfaces()
	if dev.IsFabric() {
		r.renderOSPF()
	}
	if err := r.renderBGP(); err != nil {
		return nil, err
	}
	if dev.Role == fabric.RoleLeaf {
		if err := r.renderOverlay(); err != nil {
			return nil, err
		}
	}

	return r.statements, nil
}

type renderer struct {
	vm         *fabric.ValidatedModel
	dev        *fabric.Device
	statements []Statement
}

func (r *renderer) emit(s Statement) {
	r.statements = append(r.statements, s)
}

// localLinkAddr returns this device's address and mask length on a link.
// Endpoint A always takes the lower host, B the higher.
func (r *renderer) localLinkAddr(l *fabric.UnderlayLink) (string, int) {
	first, second, err := util.PointToPointHosts(l.Subnet)
	if err != nil {
		return "", 0
	}
	_, mask := util.SplitIPMask(l.Subnet)
	if l.A.Device == r.dev.Hostname {
		return first, mask
	}
	return second, mask
}

// remoteEnd returns the far endpoint and its address on a link, derived
// from this device's own address: on a /31 or /30 the peer is the other
// usable host.
func (r *renderer) remoteEnd(l *fabric.UnderlayLink) (fabric.Endpoint, string) {
	addr, mask := r.localLinkAddr(l)
	if addr == "" {
		return fabric.Endpoint{}, ""
	}
	peer, err := util.DeriveNeighborIP(fmt.Sprintf("%s/%d", addr, mask))
	if err != nil {
		return fabric.Endpoint{}, ""
	}
	if l.A.Device == r.dev.Hostname {
		return l.B, peer
	}
	return l.A, peer
}

func (r *renderer) sortedLinks() []*fabric.UnderlayLink {
	links := r.vm.LinksFor(r.dev.Hostname)
	sort.Slice(links, func(i, j int) bool {
		li, _ := localIface(links[i], r.dev.Hostname)
		lj, _ := localIface(links[j], r.dev.Hostname)
		return li < lj
	})
	return links
}

func localIface(l *fabric.UnderlayLink, hostname string) (string, bool) {
	if l.A.Device == hostname {
		return l.A.Interface, true
	}
	return l.B.Interface, false
}

func (r *renderer) renderInterfaces() {
	for _, l := range r.sortedLinks() {
		iface, _ := localIface(l, r.dev.Hostname)
		addr, mask := r.localLinkAddr(l)
		cidr := fmt.Sprintf("%s/%d", addr, mask)

		var b strings.Builder
		fmt.Fprintf(&b, "interface %s\n", iface)
		b.WriteString("  no switchport\n")
		fmt.Fprintf(&b, "  ip address %s\n", cidr)
		b.WriteString("  no shutdown")

		r.emit(Statement{
			Layer: LayerInterface,
			Key:   InterfaceKey(iface),
			Text:  b.String(),
			Attrs: map[string]string{"ip": cidr},
		})
	}

	r.emit(Statement{
		Layer: LayerInterface,
		Key:   InterfaceKey("loopback0"),
		Text: fmt.Sprintf("interface loopback0\n  ip address %s\n  no shutdown",
			r.dev.Loopback),
		Attrs: map[string]string{"ip": r.dev.Loopback},
	})
}

// renderOSPF emits the underlay IGP: the process plus per-interface
// enablement for links toward other fabric devices. Links toward
// external routers carry eBGP, not OSPF.
func (r *renderer) renderOSPF() {
	area := r.vm.OSPFArea

	r.emit(Statement{
		Layer: LayerOSPF,
		Key:   OSPFKey(),
		Text: fmt.Sprintf("feature ospf\nrouter ospf UNDERLAY\n  router-id %s",
			r.dev.LoopbackIP()),
		Attrs: map[string]string{"router_id": r.dev.LoopbackIP()},
	})

	for _, l := range r.sortedLinks() {
		remote, _ := r.remoteEnd(l)
		rd := r.vm.Device(remote.Device)
		if rd == nil || !rd.IsFabric() {
			continue
		}
		iface, _ := localIface(l, r.dev.Hostname)
		r.emit(Statement{
			Layer: LayerOSPF,
			Key:   OSPFIfKey(iface),
			Text: fmt.Sprintf("interface %s\n  ip router ospf UNDERLAY area %s",
				iface, area),
			Attrs:     map[string]string{"area": area},
			DependsOn: []string{OSPFKey(), InterfaceKey(iface)},
		})
	}

	r.emit(Statement{
		Layer: LayerOSPF,
		Key:   OSPFIfKey("loopback0"),
		Text: fmt.Sprintf("interface loopback0\n  ip router ospf UNDERLAY area %s",
			area),
		Attrs:     map[string]string{"area": area},
		DependsOn: []string{OSPFKey(), InterfaceKey("loopback0")},
	})
}

type neighbor struct {
	ip       string
	remoteAS int
	evpn     bool // l2vpn evpn address-family (overlay) vs ipv4 unicast
	client   bool // route-reflector-client
	iface    string
}

func (r *renderer) renderBGP() error {
	as := r.dev.ASNumber

	var b strings.Builder
	fmt.Fprintf(&b, "feature bgp\nrouter bgp %d\n", as)
	fmt.Fprintf(&b, "  router-id %s", r.dev.LoopbackIP())
	if r.dev.IsFabric() {
		b.WriteString("\n  address-family l2vpn evpn")
	} else {
		b.WriteString("\n  address-family ipv4 unicast")
	}

	r.emit(Statement{
		Layer: LayerBGP,
		Key:   BGPKey(as),
		Text:  b.String(),
		Attrs: map[string]string{
			"as":        strconv.Itoa(as),
			"router_id": r.dev.LoopbackIP(),
		},
	})

	neighbors, err := r.collectNeighbors()
	if err != nil {
		return err
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].ip < neighbors[j].ip })

	for _, n := range neighbors {
		var nb strings.Builder
		fmt.Fprintf(&nb, "router bgp %d\n", as)
		fmt.Fprintf(&nb, "  neighbor %s\n", n.ip)
		fmt.Fprintf(&nb, "    remote-as %d\n", n.remoteAS)
		if n.evpn {
			nb.WriteString("    update-source loopback0\n")
			nb.WriteString("    address-family l2vpn evpn\n")
			nb.WriteString("      send-community extended")
			if n.client {
				nb.WriteString("\n      route-reflector-client")
			}
		} else {
			if r.vm.EBGPMultihop > 0 {
				fmt.Fprintf(&nb, "    ebgp-multihop %d\n", r.vm.EBGPMultihop)
			}
			nb.WriteString("    address-family ipv4 unicast")
		}

		attrs := map[string]string{
			"remote_as": strconv.Itoa(n.remoteAS),
		}
		if n.evpn {
			attrs["af"] = "l2vpn_evpn"
			if n.client {
				attrs["rr_client"] = "true"
			}
		} else {
			attrs["af"] = "ipv4_unicast"
		}

		r.emit(Statement{
			Layer:     LayerBGP,
			Key:       NeighborKey(n.ip),
			Text:      nb.String(),
			Attrs:     attrs,
			DependsOn: []string{BGPKey(as)},
		})
	}

	return nil
}

// collectNeighbors derives this device's BGP peers from the model.
// Overlay peers (iBGP l2vpn evpn over loopbacks): spines peer with all
// other fabric devices, reflecting for leaves; leaves peer with spines.
// Underlay peers (eBGP ipv4 unicast over link addresses): any link
// whose far end is an external router, in either direction.
func (r *renderer) collectNeighbors() ([]neighbor, error) {
	var out []neighbor

	switch r.dev.Role {
	case fabric.RoleSpine:
		for _, d := range r.vm.Devices {
			if d.Hostname == r.dev.Hostname || !d.IsFabric() {
				continue
			}
			out = append(out, neighbor{
				ip:       d.LoopbackIP(),
				remoteAS: d.ASNumber,
				evpn:     true,
				client:   d.Role == fabric.RoleLeaf,
			})
		}
	case fabric.RoleLeaf:
		for _, d := range r.vm.DevicesByRole(fabric.RoleSpine) {
			out = append(out, neighbor{
				ip:       d.LoopbackIP(),
				remoteAS: d.ASNumber,
				evpn:     true,
			})
		}
	}

	for _, l := range r.sortedLinks() {
		remote, remoteAddr := r.remoteEnd(l)
		rd := r.vm.Device(remote.Device)
		if rd == nil {
			return nil, &Error{Device: r.dev.Hostname,
				Msg: fmt.Sprintf("link references undeclared device %q", remote.Device)}
		}
		// eBGP peering exists on fabric<->external links only.
		if rd.Role == fabric.RoleExternal || (r.dev.Role == fabric.RoleExternal && rd.IsFabric()) {
			out = append(out, neighbor{
				ip:       remoteAddr,
				remoteAS: rd.ASNumber,
			})
		}
	}

	return out, nil
}

// renderOverlay emits the leaf-only stack: VRFs, VLANs, EVPN instances,
// NVE memberships, and SVIs.
func (r *renderer) renderOverlay() error {
	vrfs := make([]*fabric.VrfDefinition, len(r.vm.VRFs))
	copy(vrfs, r.vm.VRFs)
	sort.Slice(vrfs, func(i, j int) bool { return vrfs[i].Name < vrfs[j].Name })

	bindings := make([]*fabric.VlanBinding, len(r.vm.Vlans))
	copy(bindings, r.vm.Vlans)
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].ID < bindings[j].ID })

	for _, vrf := range vrfs {
		carrier := r.vm.Binding(vrf.L3VNIVlan)
		if carrier == nil {
			return &Error{Device: r.dev.Hostname,
				Msg: fmt.Sprintf("VRF %s references undefined L3VNI VLAN %d", vrf.Name, vrf.L3VNIVlan)}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "vrf context %s\n", vrf.Name)
		fmt.Fprintf(&b, "  vni %d\n", carrier.VNI)
		fmt.Fprintf(&b, "  rd %s\n", vrf.RD)
		b.WriteString("  address-family ipv4 unicast")
		for _, rt := range sortedCopy(vrf.ImportTargets) {
			fmt.Fprintf(&b, "\n    route-target import %s", rt)
		}
		for _, rt := range sortedCopy(vrf.ExportTargets) {
			fmt.Fprintf(&b, "\n    route-target export %s", rt)
		}

		r.emit(Statement{
			Layer: LayerVRF,
			Key:   VRFKey(vrf.Name),
			Text:  b.String(),
			Attrs: map[string]string{
				"vni":       strconv.Itoa(carrier.VNI),
				"rd":        vrf.RD,
				"rt_import": strings.Join(sortedCopy(vrf.ImportTargets), ","),
				"rt_export": strings.Join(sortedCopy(vrf.ExportTargets), ","),
			},
			DependsOn: []string{BGPKey(r.dev.ASNumber)},
		})
	}

	if r.vm.AnycastGatewayMAC != "" {
		r.emit(Statement{
			Layer: LayerVLAN,
			Key:   AnycastMACKey(),
			Text:  "fabric forwarding anycast-gateway-mac " + r.vm.AnycastGatewayMAC,
			Attrs: map[string]string{"mac": r.vm.AnycastGatewayMAC},
		})
	}

	for _, binding := range bindings {
		r.emit(Statement{
			Layer: LayerVLAN,
			Key:   VLANKey(binding.ID),
			Text: fmt.Sprintf("vlan %d\n  name %s\n  vn-segment %d",
				binding.ID, binding.Name, binding.VNI),
			Attrs: map[string]string{
				"vlanid": strconv.Itoa(binding.ID),
				"name":   binding.Name,
				"vni":    strconv.Itoa(binding.VNI),
			},
		})
	}

	for _, binding := range bindings {
		if r.vm.IsL3VNIVlan(binding.ID) {
			continue
		}
		r.emit(Statement{
			Layer: LayerEVPN,
			Key:   EVPNInstanceKey(binding.ID),
			Text: fmt.Sprintf("evpn\n  vni %d l2\n    rd auto\n    route-target import auto\n    route-target export auto",
				binding.VNI),
			Attrs: map[string]string{
				"vlan": strconv.Itoa(binding.ID),
				"vni":  strconv.Itoa(binding.VNI),
			},
			DependsOn: []string{VLANKey(binding.ID)},
		})
	}

	if len(bindings) > 0 {
		r.emit(Statement{
			Layer: LayerNVE,
			Key:   NVEKey(),
			Text:  "interface nve1\n  no shutdown\n  host-reachability protocol bgp\n  source-interface loopback0",
			Attrs: map[string]string{
				"src_ip": r.dev.LoopbackIP(),
			},
			DependsOn: []string{InterfaceKey("loopback0")},
		})
	}

	for _, binding := range bindings {
		deps := []string{NVEKey(), VLANKey(binding.ID)}
		attrs := map[string]string{
			"vni":  strconv.Itoa(binding.VNI),
			"vlan": strconv.Itoa(binding.ID),
		}

		var text string
		if r.vm.IsL3VNIVlan(binding.ID) {
			text = fmt.Sprintf("interface nve1\n  member vni %d associate-vrf", binding.VNI)
			attrs["associate_vrf"] = "true"
			if vrf := r.vrfForCarrier(binding.ID); vrf != nil {
				deps = append(deps, VRFKey(vrf.Name))
			}
		} else {
			var b strings.Builder
			fmt.Fprintf(&b, "interface nve1\n  member vni %d\n", binding.VNI)
			if binding.ARPSuppression {
				b.WriteString("    suppress-arp\n")
				attrs["suppress_arp"] = "true"
			}
			b.WriteString("    ingress-replication protocol bgp")
			text = b.String()
			if binding.VRF != "" {
				deps = append(deps, EVPNInstanceKey(binding.ID))
			}
		}

		r.emit(Statement{
			Layer:     LayerNVE,
			Key:       NVEMemberKey(binding.VNI),
			Text:      text,
			Attrs:     attrs,
			DependsOn: deps,
		})
	}

	for _, binding := range bindings {
		vrfName := binding.VRF
		if vrfName == "" && r.vm.IsL3VNIVlan(binding.ID) {
			if vrf := r.vrfForCarrier(binding.ID); vrf != nil {
				vrfName = vrf.Name
			}
		}

		deps := []string{VLANKey(binding.ID)}
		attrs := map[string]string{
			"vlan": strconv.Itoa(binding.ID),
		}

		var b strings.Builder
		fmt.Fprintf(&b, "interface Vlan%d\n", binding.ID)
		b.WriteString("  no shutdown\n")
		if vrfName != "" {
			fmt.Fprintf(&b, "  vrf member %s\n", vrfName)
			deps = append(deps, VRFKey(vrfName))
			attrs["vrf"] = vrfName
		}

		if r.vm.IsL3VNIVlan(binding.ID) {
			// L3VNI carrier SVI routes between VTEPs; no address.
			b.WriteString("  ip forward")
			attrs["forward"] = "true"
		} else {
			gw, err := util.FirstHostIP(binding.Subnet)
			if err != nil {
				return &Error{Device: r.dev.Hostname,
					Msg: fmt.Sprintf("VLAN %d: %v", binding.ID, err)}
			}
			_, mask := util.SplitIPMask(binding.Subnet)
			cidr := fmt.Sprintf("%s/%d", gw, mask)
			fmt.Fprintf(&b, "  ip address %s\n", cidr)
			b.WriteString("  fabric forwarding mode anycast-gateway")
			attrs["ip"] = cidr
		}

		r.emit(Statement{
			Layer:     LayerSVI,
			Key:       SVIKey(binding.ID),
			Text:      b.String(),
			Attrs:     attrs,
			DependsOn: deps,
		})
	}

	return nil
}

// vrfForCarrier returns the VRF whose L3VNI rides on the given VLAN.
func (r *renderer) vrfForCarrier(vlanID int) *fabric.VrfDefinition {
	for _, v := range r.vm.VRFs {
		if v.L3VNIVlan == vlanID {
			return v
		}
	}
	return nil
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
