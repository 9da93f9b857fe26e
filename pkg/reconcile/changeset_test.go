package reconcile

import (
	"strings"
	"testing"

	"github.com/fabricmesh/fabrictl/pkg/render"
)

func TestChangeSetString(t *testing.T) {
	cs := NewChangeSet("leaf1", "plan")
	if !cs.IsEmpty() {
		t.Error("new change set should be empty")
	}
	if cs.String() != "No changes" {
		t.Errorf("empty String() = %q", cs.String())
	}

	cs.Add(render.Statement{Key: "vlan/1154", Text: "vlan 1154"}, ActionApply)
	cs.Add(render.Statement{Key: "vlan/1160", Text: "no vlan 1160"}, ActionRemove)

	s := cs.String()
	if !strings.Contains(s, "[ADD] vlan/1154") || !strings.Contains(s, "[DEL] vlan/1160") {
		t.Errorf("String() = %q", s)
	}
}

func TestChangeSetPreview(t *testing.T) {
	cs := NewChangeSet("leaf1", "apply")
	cs.Add(render.Statement{Key: "vlan/1154", Text: "vlan 1154\n  name servers-4"}, ActionApply)

	p := cs.Preview()
	for _, want := range []string{"Device: leaf1", "Operation: apply", "Changes (1):", "name servers-4"} {
		if !strings.Contains(p, want) {
			t.Errorf("Preview() missing %q:\n%s", want, p)
		}
	}

	empty := NewChangeSet("leaf1", "plan")
	if !strings.Contains(empty.Preview(), "Changes: none") {
		t.Error("empty preview should say none")
	}
}
