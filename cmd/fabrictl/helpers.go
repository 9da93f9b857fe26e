package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"syscall"

	"golang.org/x/term"

	"github.com/fabricmesh/fabrictl/pkg/device"
	"github.com/fabricmesh/fabrictl/pkg/device/sonic"
	"github.com/fabricmesh/fabrictl/pkg/fabric"
	"github.com/fabricmesh/fabrictl/pkg/reconcile"
	"github.com/fabricmesh/fabrictl/pkg/run"
)

// loadModel loads and validates the fabric description.
func loadModel() (*fabric.ValidatedModel, error) {
	if fabricPath == "" {
		return nil, fmt.Errorf("no fabric file: use --fabric or set a default with 'fabrictl settings set fabric <path>'")
	}
	m, err := fabric.Load(fabricPath)
	if err != nil {
		return nil, err
	}
	return fabric.Validate(m)
}

// selectDevices resolves explicit device arguments plus the
// --device-filter glob into hostnames, in model order.
func selectDevices(vm *fabric.ValidatedModel, args []string) ([]string, error) {
	if len(args) > 0 {
		for _, name := range args {
			if vm.Device(name) == nil {
				return nil, fmt.Errorf("device %q not in fabric %s", name, vm.Name)
			}
		}
		return args, nil
	}

	var out []string
	for _, d := range vm.Devices {
		if deviceFilter != "" {
			ok, err := path.Match(deviceFilter, d.Hostname)
			if err != nil {
				return nil, fmt.Errorf("bad --device-filter %q: %w", deviceFilter, err)
			}
			if !ok {
				continue
			}
		}
		out = append(out, d.Hostname)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no devices match filter %q", deviceFilter)
	}
	return out, nil
}

// newRunner wires the transport-routing reader and executor.
func newRunner(vm *fabric.ValidatedModel, operation string, execute bool) *run.Runner {
	return &run.Runner{
		Model:    vm,
		Reader:   &routingReader{factsDir: factsDir},
		Executor: &routingExecutor{},
		Options: run.Options{
			Operation:   operation,
			Concurrency: concurrency,
			Timeout:     timeout,
			Execute:     execute,
		},
	}
}

// routingReader picks a state reader per device: snapshot files when
// --facts-dir is set, otherwise CONFIG_DB for SONiC transports. Devices
// with a CLI-only transport have no structured state source and need
// snapshots.
type routingReader struct {
	factsDir string
}

func (r *routingReader) ReadFacts(ctx context.Context, dev *fabric.Device) (reconcile.Facts, error) {
	if r.factsDir != "" {
		fr := &device.FileReader{Dir: r.factsDir}
		return fr.ReadFacts(ctx, dev)
	}
	if dev.Transport == fabric.TransportSonic {
		sr := &sonic.Reader{}
		return sr.ReadFacts(ctx, dev)
	}
	return nil, &device.ParseError{
		Device: dev.Hostname,
		Detail: fmt.Sprintf("transport %s has no structured state reader; use --facts-dir", dev.Transport),
	}
}

// routingExecutor picks an executor per device transport.
type routingExecutor struct{}

func (e *routingExecutor) Apply(ctx context.Context, dev *fabric.Device, cs *reconcile.ChangeSet) []device.StatementResult {
	if dev.Transport == fabric.TransportSonic {
		se := &sonic.Executor{}
		return se.Apply(ctx, dev, cs)
	}
	ce := &device.CLIExecutor{}
	return ce.Apply(ctx, dev, cs)
}

// promptPasswords asks for missing SSH passwords before a run touches
// live devices. Passwords are never persisted.
func promptPasswords(vm *fabric.ValidatedModel, hostnames []string) error {
	if factsDir != "" {
		return nil
	}
	for _, name := range hostnames {
		dev := vm.Device(name)
		if dev == nil || dev.SSHUser == "" || dev.SSHPass != "" {
			continue
		}
		fmt.Fprintf(os.Stderr, "Password for %s@%s: ", dev.SSHUser, dev.Hostname)
		pass, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password for %s: %w", dev.Hostname, err)
		}
		dev.SSHPass = string(pass)
	}
	return nil
}
