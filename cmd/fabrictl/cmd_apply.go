package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fabricmesh/fabrictl/pkg/audit"
	"github.com/fabricmesh/fabrictl/pkg/run"
	"github.com/fabricmesh/fabrictl/pkg/settings"
	"github.com/fabricmesh/fabrictl/pkg/util"
)

var applyCmd = &cobra.Command{
	Use:   "apply [device...]",
	Short: "Apply pending changes to devices",
	Long: `Reconcile each device and execute its change set.

Statements apply in dependency order; the first failed statement stops
that device's remaining statements, but never another device's pipeline.
Every run is recorded in the audit log. Exit code is non-zero unless
every statement on every selected device succeeded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		vm, err := loadModel()
		if err != nil {
			return err
		}
		hostnames, err := selectDevices(vm, args)
		if err != nil {
			return err
		}
		if err := promptPasswords(vm, hostnames); err != nil {
			return err
		}

		auditPath := userSettings.AuditLog
		if auditPath == "" {
			auditPath = settings.DefaultAuditPath()
		}
		auditLog, err := audit.NewFileLogger(auditPath)
		if err != nil {
			return err
		}
		defer auditLog.Close()

		runner := newRunner(vm, "apply", true)
		start := time.Now()
		results := runner.Run(context.Background(), hostnames)

		failures := 0
		for _, r := range results {
			logAudit(auditLog, vm.Name, &r, time.Since(start))
			printApplyResult(&r)
			if !r.OK() {
				failures++
			}
		}

		if jsonOutput {
			if err := printResultsJSON(results); err != nil {
				return err
			}
		}
		if failures > 0 {
			return fmt.Errorf("%d of %d device(s) failed", failures, len(results))
		}
		if !jsonOutput {
			fmt.Printf("All %d device(s) applied cleanly\n", len(results))
		}
		return nil
	},
}

func printApplyResult(r *run.DeviceResult) {
	if jsonOutput {
		return
	}
	if r.Err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", r.Device, r.Err)
		return
	}
	if r.ChangeSet.IsEmpty() {
		fmt.Printf("%s: in sync, nothing applied\n", r.Device)
		return
	}
	for _, sr := range r.Results {
		if sr.OK {
			fmt.Printf("%s: ok     %s %s\n", r.Device, sr.Action, sr.Key)
		} else {
			fmt.Printf("%s: FAILED %s %s: %s\n", r.Device, sr.Action, sr.Key, sr.Reason)
		}
	}
	if skipped := len(r.ChangeSet.Changes) - len(r.Results); skipped > 0 {
		fmt.Printf("%s: %d statement(s) not attempted\n", r.Device, skipped)
	}
}

func logAudit(logger audit.Logger, fabricName string, r *run.DeviceResult, elapsed time.Duration) {
	event := audit.NewEvent(fabricName, r.Device, "apply")
	event.DryRun = false
	event.Success = r.OK()
	event.Duration = elapsed.Round(time.Millisecond).String()
	if r.Err != nil {
		event.Error = r.Err.Error()
	}
	if r.ChangeSet != nil {
		for _, c := range r.ChangeSet.Changes {
			event.Changes = append(event.Changes, string(c.Action)+" "+c.Statement.Key)
		}
	}
	for _, sr := range r.Results {
		if sr.OK {
			event.Applied++
		}
	}
	if err := logger.Log(event); err != nil {
		util.Warnf("audit: %v", err)
	}
}
