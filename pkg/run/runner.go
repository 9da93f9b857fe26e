// Package run schedules per-device pipelines (render, read facts,
// reconcile, optionally execute) across a bounded worker pool. The
// validated model is shared read-only; nothing else crosses device
// pipelines, so a failure on one device never blocks another.
package run

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fabricmesh/fabrictl/pkg/device"
	"github.com/fabricmesh/fabrictl/pkg/fabric"
	"github.com/fabricmesh/fabrictl/pkg/reconcile"
	"github.com/fabricmesh/fabrictl/pkg/render"
	"github.com/fabricmesh/fabrictl/pkg/util"
)

// DefaultConcurrency bounds parallel device sessions when the caller
// does not say otherwise.
const DefaultConcurrency = 8

// Options configures a run.
type Options struct {
	Operation   string        // tag recorded on change sets ("plan", "apply")
	Concurrency int           // max parallel device pipelines
	Timeout     time.Duration // per network call (read facts, apply); 0 = none
	Execute     bool          // apply change sets; false = dry run
	SnapshotDir string        // save each device's facts here for offline plans
}

// DeviceResult is one device's outcome. The run as a whole never fails
// atomically; callers aggregate these.
type DeviceResult struct {
	Device    string
	Err       error
	ChangeSet *reconcile.ChangeSet
	Executed  bool // change set was handed to the executor
	Results   []device.StatementResult
}

// OK reports whether the device's pipeline completed: no error, and if
// the change set was executed, every statement applied. A dry run with
// pending changes is still OK; pending is plan's answer, not a failure.
func (r *DeviceResult) OK() bool {
	if r.Err != nil {
		return false
	}
	if r.Executed && len(r.Results) < len(r.ChangeSet.Changes) {
		return false
	}
	return device.AllOK(r.Results)
}

// Runner drives per-device pipelines over a validated model.
type Runner struct {
	Model    *fabric.ValidatedModel
	Reader   device.StateReader
	Executor device.Executor
	Options  Options
}

// Run processes the named devices concurrently and returns one result
// per device, in input order.
func (r *Runner) Run(ctx context.Context, hostnames []string) []DeviceResult {
	concurrency := r.Options.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]DeviceResult, len(hostnames))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, hostname := range hostnames {
		wg.Add(1)
		go func(i int, hostname string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = r.runDevice(ctx, hostname)
		}(i, hostname)
	}
	wg.Wait()

	return results
}

func (r *Runner) runDevice(ctx context.Context, hostname string) DeviceResult {
	res := DeviceResult{Device: hostname}
	log := util.WithDevice(hostname)

	dev := r.Model.Device(hostname)
	if dev == nil {
		res.Err = util.NewDeviceError(hostname, util.ErrNotFound)
		return res
	}

	desired, err := render.Render(r.Model, hostname)
	if err != nil {
		res.Err = err
		return res
	}

	facts, err := r.readFacts(ctx, dev)
	if err != nil {
		log.Warnf("reading facts: %v", err)
		res.Err = err
		return res
	}

	if r.Options.SnapshotDir != "" {
		if err := device.WriteSnapshot(r.Options.SnapshotDir, hostname, facts); err != nil {
			log.Warnf("saving facts snapshot: %v", err)
		}
	}

	managed := reconcile.ManagedFromModel(r.Model, hostname)
	cs, err := reconcile.Reconcile(hostname, r.Options.Operation, desired, facts, managed)
	if err != nil {
		res.Err = err
		return res
	}
	res.ChangeSet = cs

	if !r.Options.Execute || cs.IsEmpty() {
		return res
	}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()
	res.Executed = true
	res.Results = r.Executor.Apply(callCtx, dev, cs)
	if !device.AllOK(res.Results) {
		log.Warn("apply stopped at first failed statement")
	}

	return res
}

func (r *Runner) readFacts(ctx context.Context, dev *fabric.Device) (reconcile.Facts, error) {
	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	facts, err := r.Reader.ReadFacts(callCtx, dev)
	if err != nil {
		// A deadline hit inside the transport reports as unreachable.
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &device.UnreachableError{Device: dev.Hostname, Err: err}
		}
		return nil, err
	}
	return facts, nil
}

func (r *Runner) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Options.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.Options.Timeout)
}
