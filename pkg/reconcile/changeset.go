package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/fabricmesh/fabrictl/pkg/render"
)

// Action tags a change as an application or a removal.
type Action string

const (
	ActionApply  Action = "apply"
	ActionRemove Action = "remove"
)

// Change is one statement plus the action to take on it.
type Change struct {
	Statement render.Statement
	Action    Action
}

// ChangeSet is the ordered sequence of changes for one device. It is
// produced fresh by each reconciliation pass and consumed, never
// mutated, by the executor.
type ChangeSet struct {
	Device    string    `json:"device"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
	Changes   []Change  `json:"changes"`
}

// NewChangeSet creates an empty ChangeSet.
func NewChangeSet(device, operation string) *ChangeSet {
	return &ChangeSet{
		Device:    device,
		Operation: operation,
		Timestamp: time.Now(),
		Changes:   make([]Change, 0),
	}
}

// Add appends a change.
func (cs *ChangeSet) Add(s render.Statement, action Action) {
	cs.Changes = append(cs.Changes, Change{Statement: s, Action: action})
}

// IsEmpty returns true if there are no changes.
func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.Changes) == 0
}

// String returns a human-readable representation of the changes.
func (cs *ChangeSet) String() string {
	if cs.IsEmpty() {
		return "No changes"
	}

	var sb strings.Builder
	for _, c := range cs.Changes {
		tag := "[ADD]"
		if c.Action == ActionRemove {
			tag = "[DEL]"
		}
		fmt.Fprintf(&sb, "  %s %s\n", tag, c.Statement.Key)
	}
	return sb.String()
}

// Preview returns a formatted preview including full statement text.
func (cs *ChangeSet) Preview() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Operation: %s\n", cs.Operation)
	fmt.Fprintf(&sb, "Device: %s\n", cs.Device)
	if cs.IsEmpty() {
		sb.WriteString("Changes: none\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Changes (%d):\n", len(cs.Changes))
	for _, c := range cs.Changes {
		tag := "[ADD]"
		if c.Action == ActionRemove {
			tag = "[DEL]"
		}
		fmt.Fprintf(&sb, "%s %s\n", tag, c.Statement.Key)
		for _, line := range strings.Split(c.Statement.Text, "\n") {
			fmt.Fprintf(&sb, "      %s\n", line)
		}
	}
	return sb.String()
}
