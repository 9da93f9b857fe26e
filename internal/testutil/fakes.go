package testutil

import (
	"context"
	"sync"

	"github.com/fabricmesh/fabrictl/pkg/device"
	"github.com/fabricmesh/fabrictl/pkg/fabric"
	"github.com/fabricmesh/fabrictl/pkg/reconcile"
)

// FakeReader serves canned facts per device. Devices listed in Fail
// report an UnreachableError instead.
type FakeReader struct {
	Facts map[string]reconcile.Facts
	Fail  map[string]error

	mu    sync.Mutex
	Reads []string
}

// ReadFacts implements device.StateReader.
func (r *FakeReader) ReadFacts(ctx context.Context, dev *fabric.Device) (reconcile.Facts, error) {
	r.mu.Lock()
	r.Reads = append(r.Reads, dev.Hostname)
	r.mu.Unlock()

	if err, ok := r.Fail[dev.Hostname]; ok {
		return nil, err
	}
	if facts, ok := r.Facts[dev.Hostname]; ok {
		return facts, nil
	}
	return make(reconcile.Facts), nil
}

// FakeExecutor applies change sets in memory. FailAtIndex maps a device
// to the zero-based statement index that fails; remaining statements
// are not attempted, matching real executor behavior.
type FakeExecutor struct {
	FailAtIndex map[string]int

	mu      sync.Mutex
	Applied map[string][]device.StatementResult
}

// Apply implements device.Executor.
func (e *FakeExecutor) Apply(ctx context.Context, dev *fabric.Device, cs *reconcile.ChangeSet) []device.StatementResult {
	var results []device.StatementResult

	failAt, shouldFail := -1, false
	if e.FailAtIndex != nil {
		failAt, shouldFail = e.FailAtIndex[dev.Hostname], true
		if _, ok := e.FailAtIndex[dev.Hostname]; !ok {
			shouldFail = false
		}
	}

	for i, c := range cs.Changes {
		if shouldFail && i == failAt {
			results = append(results, device.StatementResult{
				Key:    c.Statement.Key,
				Action: c.Action,
				Reason: "simulated failure",
			})
			break
		}
		results = append(results, device.StatementResult{
			Key:    c.Statement.Key,
			Action: c.Action,
			OK:     true,
		})
	}

	e.mu.Lock()
	if e.Applied == nil {
		e.Applied = make(map[string][]device.StatementResult)
	}
	e.Applied[dev.Hostname] = results
	e.mu.Unlock()

	return results
}
