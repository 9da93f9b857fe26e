package sonic

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fabricmesh/fabrictl/pkg/device"
	"github.com/fabricmesh/fabrictl/pkg/fabric"
	"github.com/fabricmesh/fabrictl/pkg/reconcile"
	"github.com/fabricmesh/fabrictl/pkg/render"
)

// Reader loads a SONiC device's CONFIG_DB and maps it into facts.
type Reader struct{}

// ReadFacts implements device.StateReader.
func (r *Reader) ReadFacts(ctx context.Context, dev *fabric.Device) (reconcile.Facts, error) {
	client, err := Dial(ctx, dev)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	db, err := client.GetAll(ctx)
	if err != nil {
		return nil, &device.UnreachableError{Device: dev.Hostname, Err: err}
	}

	return FactsFromConfigDB(dev.Hostname, db)
}

// FactsFromConfigDB maps raw CONFIG_DB entries ("TABLE|key" hashes)
// into the semantic fact key space. Entries in tables the fabric model
// does not manage are ignored, not errors.
func FactsFromConfigDB(hostname string, db map[string]map[string]string) (reconcile.Facts, error) {
	facts := make(reconcile.Facts)

	// First pass: VNI-to-VLAN mapping, needed to key EVPN instances by
	// their VLAN and to attach ARP suppression to NVE members.
	vniToVlan := make(map[string]string)
	for key, fields := range db {
		table, parts := splitKey(key)
		if table != "VXLAN_TUNNEL_MAP" || len(parts) != 2 {
			continue
		}
		vni, vlan, err := parseTunnelMapKey(parts[1])
		if err != nil {
			return nil, &device.ParseError{Device: hostname, Detail: err.Error()}
		}
		vniToVlan[vni] = vlan
		_ = fields
	}

	for key, fields := range db {
		table, parts := splitKey(key)
		if len(parts) == 0 {
			continue
		}

		switch table {
		case "VLAN":
			if len(parts) != 1 {
				continue
			}
			id, err := vlanID(parts[0])
			if err != nil {
				return nil, &device.ParseError{Device: hostname, Detail: err.Error()}
			}
			attrs := map[string]string{"vlanid": strconv.Itoa(id)}
			if name := fields["description"]; name != "" {
				attrs["name"] = name
			}
			facts.Add(render.VLANKey(id), attrs)

		case "VXLAN_TUNNEL":
			attrs := map[string]string{}
			if src := fields["src_ip"]; src != "" {
				attrs["src_ip"] = src
			}
			facts.Add(render.NVEKey(), attrs)

		case "VXLAN_TUNNEL_MAP":
			if len(parts) != 2 {
				continue
			}
			vni, vlan, err := parseTunnelMapKey(parts[1])
			if err != nil {
				return nil, &device.ParseError{Device: hostname, Detail: err.Error()}
			}
			vniNum, err := strconv.Atoi(vni)
			if err != nil {
				return nil, &device.ParseError{Device: hostname, Detail: "VXLAN_TUNNEL_MAP VNI " + vni}
			}
			facts.Add(render.NVEMemberKey(vniNum), map[string]string{
				"vni":  vni,
				"vlan": vlan,
			})

		case "VRF":
			if len(parts) != 1 {
				continue
			}
			attrs := map[string]string{}
			if vni := fields["vni"]; vni != "" {
				attrs["vni"] = vni
			}
			facts.Add(render.VRFKey(parts[0]), attrs)

		case "VLAN_INTERFACE":
			id, err := vlanID(parts[0])
			if err != nil {
				return nil, &device.ParseError{Device: hostname, Detail: err.Error()}
			}
			k := render.SVIKey(id)
			attrs := map[string]string{"vlan": strconv.Itoa(id)}
			if prev, ok := facts[k]; ok {
				attrs = prev.Attrs
			}
			if len(parts) == 2 {
				attrs["ip"] = parts[1]
			} else if vrf := fields["vrf_name"]; vrf != "" {
				attrs["vrf"] = vrf
			}
			facts.Add(k, attrs)

		case "BGP_GLOBALS":
			asn := fields["local_asn"]
			asnNum, err := strconv.Atoi(asn)
			if err != nil {
				return nil, &device.ParseError{Device: hostname, Detail: "BGP_GLOBALS local_asn " + asn}
			}
			attrs := map[string]string{"as": asn}
			if rid := fields["router_id"]; rid != "" {
				attrs["router_id"] = rid
			}
			facts.Add(render.BGPKey(asnNum), attrs)

		case "BGP_NEIGHBOR":
			// Key is "default|<ip>" on frrcfgd builds, bare "<ip>" on
			// older bgpcfgd builds.
			ip := parts[len(parts)-1]
			attrs := map[string]string{}
			if asn := fields["asn"]; asn != "" {
				attrs["remote_as"] = asn
			}
			facts.Add(render.NeighborKey(ip), attrs)

		case "BGP_EVPN_VNI":
			vni := parts[len(parts)-1]
			vlan, ok := vniToVlan[vni]
			if !ok {
				continue // instance without a tunnel map is unmanaged
			}
			vlanNum, err := strconv.Atoi(vlan)
			if err != nil {
				return nil, &device.ParseError{Device: hostname, Detail: "VXLAN_TUNNEL_MAP VLAN " + vlan}
			}
			facts.Add(render.EVPNInstanceKey(vlanNum), map[string]string{
				"vlan": vlan,
				"vni":  vni,
			})

		case "INTERFACE":
			name := parts[0]
			k := render.InterfaceKey(name)
			attrs := map[string]string{}
			if prev, ok := facts[k]; ok {
				attrs = prev.Attrs
			}
			if len(parts) == 2 {
				attrs["ip"] = parts[1]
			}
			facts.Add(k, attrs)

		case "LOOPBACK_INTERFACE":
			k := render.InterfaceKey("loopback0")
			attrs := map[string]string{}
			if prev, ok := facts[k]; ok {
				attrs = prev.Attrs
			}
			if len(parts) == 2 {
				attrs["ip"] = parts[1]
			}
			facts.Add(k, attrs)

		case "OSPF_ROUTER":
			attrs := map[string]string{}
			if rid := fields["router_id"]; rid != "" {
				attrs["router_id"] = rid
			}
			facts.Add(render.OSPFKey(), attrs)

		case "OSPF_ROUTER_INTERFACE":
			attrs := map[string]string{}
			if area := fields["area"]; area != "" {
				attrs["area"] = area
			}
			facts.Add(render.OSPFIfKey(parts[0]), attrs)

		case "SAG_GLOBAL":
			attrs := map[string]string{}
			if mac := fields["gwmac"]; mac != "" {
				attrs["mac"] = mac
			}
			facts.Add(render.AnycastMACKey(), attrs)
		}
	}

	return facts, nil
}

func splitKey(key string) (string, []string) {
	parts := strings.Split(key, "|")
	return parts[0], parts[1:]
}

// vlanID extracts the numeric id from a "Vlan1151"-style entry key.
func vlanID(entry string) (int, error) {
	if !strings.HasPrefix(entry, "Vlan") {
		return 0, fmt.Errorf("unexpected VLAN entry key %q", entry)
	}
	id, err := strconv.Atoi(entry[len("Vlan"):])
	if err != nil {
		return 0, fmt.Errorf("unexpected VLAN entry key %q", entry)
	}
	return id, nil
}

// parseTunnelMapKey decodes "map_101151_Vlan1151" into VNI and VLAN id.
func parseTunnelMapKey(entry string) (vni, vlan string, err error) {
	parts := strings.Split(entry, "_")
	if len(parts) != 3 || parts[0] != "map" || !strings.HasPrefix(parts[2], "Vlan") {
		return "", "", fmt.Errorf("unexpected VXLAN_TUNNEL_MAP entry key %q", entry)
	}
	return parts[1], strings.TrimPrefix(parts[2], "Vlan"), nil
}
