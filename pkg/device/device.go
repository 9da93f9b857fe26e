// Package device defines the management-plane collaborators: state
// readers that fetch a device's running configuration as facts, and
// executors that apply change sets. Transport details live in the
// backends (SONiC CONFIG_DB over Redis, CLI over SSH, facts snapshots
// from files).
package device

import (
	"context"
	"fmt"

	"github.com/fabricmesh/fabrictl/pkg/fabric"
	"github.com/fabricmesh/fabrictl/pkg/reconcile"
	"github.com/fabricmesh/fabrictl/pkg/util"
)

// StateReader fetches a device's current running configuration as
// facts in the semantic identity key space.
type StateReader interface {
	ReadFacts(ctx context.Context, dev *fabric.Device) (reconcile.Facts, error)
}

// Executor applies a change set to one device, in order, stopping at
// the first failed statement. The partial result is reported, never
// silently continued. Failures on one device must not block others;
// the caller owns cross-device scheduling.
type Executor interface {
	Apply(ctx context.Context, dev *fabric.Device, cs *reconcile.ChangeSet) []StatementResult
}

// StatementResult reports the outcome of one applied statement.
type StatementResult struct {
	Key    string           `json:"key"`
	Action reconcile.Action `json:"action"`
	OK     bool             `json:"ok"`
	Reason string           `json:"reason,omitempty"`
}

// AllOK reports whether every statement in a result sequence succeeded.
func AllOK(results []StatementResult) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}

// UnreachableError reports that a device's facts or transport could not
// be reached within the call's deadline.
type UnreachableError struct {
	Device string
	Err    error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("device %s unreachable: %v", e.Device, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return util.ErrUnreachable
}

// ParseError reports that a device's state was retrieved but could not
// be decoded into facts.
type ParseError struct {
	Device string
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("device %s: cannot parse state: %s", e.Device, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return util.ErrParseFailed
}
