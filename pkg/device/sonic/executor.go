package sonic

import (
	"context"
	"fmt"

	"github.com/fabricmesh/fabrictl/pkg/device"
	"github.com/fabricmesh/fabrictl/pkg/fabric"
	"github.com/fabricmesh/fabrictl/pkg/reconcile"
	"github.com/fabricmesh/fabrictl/pkg/render"
	"github.com/fabricmesh/fabrictl/pkg/util"
)

// Executor applies change sets as CONFIG_DB writes. Each statement's
// structured attributes are translated to table entries; the rendered
// CLI text is ignored on this transport. Statements run in change-set
// order and the first failure stops the device's remaining statements.
type Executor struct{}

// Apply implements device.Executor.
func (e *Executor) Apply(ctx context.Context, dev *fabric.Device, cs *reconcile.ChangeSet) []device.StatementResult {
	results := make([]device.StatementResult, 0, len(cs.Changes))

	client, err := Dial(ctx, dev)
	if err != nil {
		if len(cs.Changes) > 0 {
			results = append(results, device.StatementResult{
				Key:    cs.Changes[0].Statement.Key,
				Action: cs.Changes[0].Action,
				Reason: err.Error(),
			})
		}
		return results
	}
	defer client.Close()

	log := util.WithDevice(dev.Hostname)

	for _, c := range cs.Changes {
		if err := applyChange(ctx, client, c); err != nil {
			log.Warnf("statement %s failed: %v", c.Statement.Key, err)
			results = append(results, device.StatementResult{
				Key:    c.Statement.Key,
				Action: c.Action,
				Reason: err.Error(),
			})
			return results
		}
		log.Debugf("applied %s", c.Statement.Key)
		results = append(results, device.StatementResult{
			Key:    c.Statement.Key,
			Action: c.Action,
			OK:     true,
		})
	}

	return results
}

func applyChange(ctx context.Context, client *Client, c reconcile.Change) error {
	keys, fields, err := entriesFor(c.Statement)
	if err != nil {
		return err
	}

	if c.Action == reconcile.ActionRemove {
		return client.Del(ctx, keys...)
	}

	for i, key := range keys {
		if err := client.HSet(ctx, key, fields[i]); err != nil {
			return err
		}
	}
	return nil
}

// entriesFor maps one statement to its CONFIG_DB entries. Returned
// slices are parallel: keys[i] gets fields[i]. SONiC marks presence-only
// entries with the NULL:NULL convention.
func entriesFor(s render.Statement) ([]string, []map[string]string, error) {
	null := map[string]string{"NULL": "NULL"}
	a := s.Attrs
	id := render.KeyID(s.Key)

	switch render.KeyClass(s.Key) {
	case "vlan":
		fields := map[string]string{"vlanid": a["vlanid"]}
		if a["name"] != "" {
			fields["description"] = a["name"]
		}
		return []string{"VLAN|Vlan" + id}, []map[string]string{fields}, nil

	case "evpn-instance":
		return []string{"BGP_EVPN_VNI|default|" + a["vni"]},
			[]map[string]string{{"vni": a["vni"]}}, nil

	case "nve":
		return []string{"VXLAN_TUNNEL|vtep"},
			[]map[string]string{{"src_ip": a["src_ip"]}}, nil

	case "nve-member":
		if a["vlan"] == "" {
			return nil, nil, fmt.Errorf("nve-member %s: missing vlan attribute", id)
		}
		key := fmt.Sprintf("VXLAN_TUNNEL_MAP|vtep|map_%s_Vlan%s", id, a["vlan"])
		return []string{key},
			[]map[string]string{{"vni": id, "vlan": "Vlan" + a["vlan"]}}, nil

	case "vrf":
		fields := map[string]string{}
		if a["vni"] != "" {
			fields["vni"] = a["vni"]
		} else {
			fields = null
		}
		return []string{"VRF|" + id}, []map[string]string{fields}, nil

	case "svi":
		keys := []string{"VLAN_INTERFACE|Vlan" + id}
		var base map[string]string
		if a["vrf"] != "" {
			base = map[string]string{"vrf_name": a["vrf"]}
		} else {
			base = null
		}
		fields := []map[string]string{base}
		if a["ip"] != "" {
			keys = append(keys, "VLAN_INTERFACE|Vlan"+id+"|"+a["ip"])
			fields = append(fields, null)
		}
		return keys, fields, nil

	case "bgp":
		fields := map[string]string{"local_asn": id}
		if a["router_id"] != "" {
			fields["router_id"] = a["router_id"]
		}
		return []string{"BGP_GLOBALS|default"}, []map[string]string{fields}, nil

	case "bgp-neighbor":
		fields := map[string]string{"asn": a["remote_as"]}
		return []string{"BGP_NEIGHBOR|default|" + id}, []map[string]string{fields}, nil

	case "interface":
		if id == "loopback0" {
			key := "LOOPBACK_INTERFACE|Loopback0"
			keys := []string{key}
			fields := []map[string]string{null}
			if a["ip"] != "" {
				keys = append(keys, key+"|"+a["ip"])
				fields = append(fields, null)
			}
			return keys, fields, nil
		}
		keys := []string{"INTERFACE|" + id}
		fields := []map[string]string{null}
		if a["ip"] != "" {
			keys = append(keys, "INTERFACE|"+id+"|"+a["ip"])
			fields = append(fields, null)
		}
		return keys, fields, nil

	case "ospf":
		fields := map[string]string{}
		if a["router_id"] != "" {
			fields["router_id"] = a["router_id"]
		} else {
			fields = null
		}
		return []string{"OSPF_ROUTER|default"}, []map[string]string{fields}, nil

	case "ospf-if":
		fields := map[string]string{}
		if a["area"] != "" {
			fields["area"] = a["area"]
		} else {
			fields = null
		}
		return []string{"OSPF_ROUTER_INTERFACE|" + id}, []map[string]string{fields}, nil

	case "fabric-forwarding":
		return []string{"SAG_GLOBAL|IP"},
			[]map[string]string{{"gwmac": a["mac"]}}, nil
	}

	return nil, nil, fmt.Errorf("statement %s: no CONFIG_DB mapping", s.Key)
}
