package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fabricmesh/fabrictl/pkg/cli"
	"github.com/fabricmesh/fabrictl/pkg/run"
)

var (
	planDetail    bool
	planSaveFacts string
)

var planCmd = &cobra.Command{
	Use:   "plan [device...]",
	Short: "Show what apply would change (dry run)",
	Long: `Render each device, read its running state, and show the change set
apply would execute. Nothing is written to any device.

Exit code 0 means every device already matches the fabric description;
1 means changes are pending (or a device could not be read).`,
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

		runner := newRunner(vm, "plan", false)
		runner.Options.SnapshotDir = planSaveFacts
		results := runner.Run(context.Background(), hostnames)

		if jsonOutput {
			return printResultsJSON(results)
		}

		pending := 0
		failed := 0
		t := cli.NewTable("DEVICE", "STATUS", "CHANGES")
		for _, r := range results {
			switch {
			case r.Err != nil:
				failed++
				t.Row(r.Device, "error", cli.Dash(""))
			case r.ChangeSet.IsEmpty():
				t.Row(r.Device, "in sync", "0")
			default:
				pending++
				t.Row(r.Device, "changes pending", fmt.Sprintf("%d", len(r.ChangeSet.Changes)))
			}
		}
		t.Flush()
		fmt.Println()

		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", r.Device, r.Err)
				continue
			}
			if planDetail && !r.ChangeSet.IsEmpty() {
				fmt.Println(r.ChangeSet.Preview())
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d device(s) could not be read", failed)
		}
		if pending > 0 {
			return fmt.Errorf("changes pending on %d device(s)", pending)
		}
		fmt.Println("All devices in sync")
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planDetail, "detail", false, "show full statement text for pending changes")
	planCmd.Flags().StringVar(&planSaveFacts, "save-facts", "", "save each device's facts to this directory for later offline plans")
}

func printResultsJSON(results []run.DeviceResult) error {
	type deviceOut struct {
		Device  string   `json:"device"`
		Error   string   `json:"error,omitempty"`
		Changes []string `json:"changes"`
	}
	out := make([]deviceOut, 0, len(results))
	for _, r := range results {
		d := deviceOut{Device: r.Device, Changes: []string{}}
		if r.Err != nil {
			d.Error = r.Err.Error()
		} else {
			for _, c := range r.ChangeSet.Changes {
				d.Changes = append(d.Changes, string(c.Action)+" "+c.Statement.Key)
			}
		}
		out = append(out, d)
	}
	return json.NewEncoder(os.Stdout).Encode(out)
}
