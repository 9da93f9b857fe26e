package reconcile

import (
	"fmt"
	"sort"

	"github.com/fabricmesh/fabrictl/pkg/render"
	"github.com/fabricmesh/fabrictl/pkg/util"
)

// ConflictError reports two desired statements claiming the same
// semantic identity. This indicates a fabric model bug and is fatal.
type ConflictError struct {
	Device string
	Key    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("reconcile %s: two desired statements claim identity %s", e.Device, e.Key)
}

func (e *ConflictError) Unwrap() error {
	return util.ErrConflict
}

// Reconcile diffs desired statements against actual facts and produces
// the minimal ordered change set for one device.
//
// Matching is by semantic identity key, never literal text, so a
// statement whose rendering changed cosmetically is not flagged. A
// desired statement with no matching fact (or whose structured
// attributes disagree with the fact's) becomes an apply; a fact with no
// matching desired statement becomes a remove, but only when its key
// lies inside the managed namespace.
//
// Ordering: removes first, deepest layer outward, then applies in
// dependency order (topologically sorted, with the renderer's layering
// as tie-break). Reconciling a device that already matches yields an
// empty change set.
func Reconcile(device, operation string, desired []render.Statement, actual Facts, managed *Managed) (*ChangeSet, error) {
	desiredByKey := make(map[string]render.Statement, len(desired))
	for _, s := range desired {
		if _, dup := desiredByKey[s.Key]; dup {
			return nil, &ConflictError{Device: device, Key: s.Key}
		}
		desiredByKey[s.Key] = s
	}

	cs := NewChangeSet(device, operation)

	var removeKeys []string
	for key := range actual {
		if _, ok := desiredByKey[key]; ok {
			continue
		}
		if managed != nil && managed.Contains(key) {
			removeKeys = append(removeKeys, key)
		}
	}
	sort.Slice(removeKeys, func(i, j int) bool {
		li, lj := render.LayerForKey(removeKeys[i]), render.LayerForKey(removeKeys[j])
		if li != lj {
			return li > lj // deepest layer removed first
		}
		return removeKeys[i] < removeKeys[j]
	})
	for _, key := range removeKeys {
		cs.Add(removalStatement(key, actual[key], managed), ActionRemove)
	}

	var pending []render.Statement
	for _, s := range desired {
		fact, ok := actual[s.Key]
		if !ok || attrsDiffer(s.Attrs, fact.Attrs) {
			pending = append(pending, s)
		}
	}

	ordered, err := topoSort(device, pending)
	if err != nil {
		return nil, err
	}
	for _, s := range ordered {
		cs.Add(s, ActionApply)
	}

	return cs, nil
}

// attrsDiffer compares a statement's structured attributes against a
// fact's. Only attributes present on both sides are compared: a reader
// that could not extract an attribute does not force a reapply.
func attrsDiffer(want, got map[string]string) bool {
	for k, w := range want {
		if g, ok := got[k]; ok && g != w {
			return true
		}
	}
	return false
}

// topoSort orders statements so every statement follows all statements
// it depends on, regardless of discovery order. Dependencies outside
// the pending set are already satisfied on the device and ignored.
// Of the statements whose dependencies are met, the lowest (layer, key)
// goes next, so the output is deterministic and never jumps a later
// layer ahead of an earlier one that is still pending.
func topoSort(device string, pending []render.Statement) ([]render.Statement, error) {
	byKey := make(map[string]render.Statement, len(pending))
	for _, s := range pending {
		byKey[s.Key] = s
	}

	placed := make(map[string]bool, len(pending))
	out := make([]render.Statement, 0, len(pending))

	for len(out) < len(pending) {
		var next *render.Statement
		for i := range pending {
			s := &pending[i]
			if placed[s.Key] {
				continue
			}
			ok := true
			for _, dep := range s.DependsOn {
				if _, inSet := byKey[dep]; inSet && !placed[dep] {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			if next == nil || s.Layer < next.Layer || (s.Layer == next.Layer && s.Key < next.Key) {
				next = s
			}
		}
		if next == nil {
			return nil, fmt.Errorf("reconcile %s: dependency cycle in change set: %w", device, util.ErrConflict)
		}
		placed[next.Key] = true
		out = append(out, *next)
	}

	return out, nil
}

// removalStatement synthesizes the statement that withdraws a fact.
// The fact's attributes fill in identifiers the key alone does not
// carry (e.g. the VNI behind an EVPN instance).
func removalStatement(key string, fact Fact, managed *Managed) render.Statement {
	id := render.KeyID(key)
	attr := func(name, fallback string) string {
		if v, ok := fact.Attrs[name]; ok && v != "" {
			return v
		}
		return fallback
	}

	var text string
	switch render.KeyClass(key) {
	case "vlan":
		text = "no vlan " + id
	case "svi":
		text = "no interface Vlan" + id
	case "evpn-instance":
		text = fmt.Sprintf("evpn\n  no vni %s l2", attr("vni", id))
	case "nve-member":
		text = fmt.Sprintf("interface nve1\n  no member vni %s", id)
	case "nve":
		text = "no interface nve1"
	case "vrf":
		text = "no vrf context " + id
	case "bgp-neighbor":
		as := ""
		if managed != nil {
			as = fmt.Sprintf("%d", managed.DeviceAS)
		}
		text = fmt.Sprintf("router bgp %s\n  no neighbor %s", as, id)
	case "bgp":
		text = "no router bgp " + id
	case "ospf":
		text = "no router ospf UNDERLAY"
	case "ospf-if":
		text = fmt.Sprintf("interface %s\n  no ip router ospf UNDERLAY area %s", id, attr("area", "0.0.0.0"))
	case "interface":
		text = "default interface " + id
	case "fabric-forwarding":
		text = "no fabric forwarding anycast-gateway-mac"
	default:
		text = "no " + key
	}

	return render.Statement{
		Layer: render.LayerForKey(key),
		Key:   key,
		Text:  text,
		Attrs: fact.Attrs,
	}
}
