package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fabricmesh/fabrictl/pkg/audit"
	"github.com/fabricmesh/fabrictl/pkg/cli"
	"github.com/fabricmesh/fabrictl/pkg/settings"
)

var (
	auditDevice    string
	auditOperation string
	auditSince     string
	auditLimit     int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show audit log of past runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		auditPath := userSettings.AuditLog
		if auditPath == "" {
			auditPath = settings.DefaultAuditPath()
		}
		logger, err := audit.NewFileLogger(auditPath)
		if err != nil {
			return err
		}
		defer logger.Close()

		filter := audit.Filter{
			Device:    auditDevice,
			Operation: auditOperation,
			Limit:     auditLimit,
		}
		if auditSince != "" {
			d, err := time.ParseDuration(auditSince)
			if err != nil {
				return fmt.Errorf("bad --since %q: %w", auditSince, err)
			}
			filter.Since = time.Now().Add(-d)
		}

		events, err := logger.Query(filter)
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(events)
		}

		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		t := cli.NewTable("TIME", "USER", "DEVICE", "OPERATION", "CHANGES", "APPLIED", "RESULT")
		for _, e := range events {
			result := "ok"
			if !e.Success {
				result = "FAILED"
			}
			t.Row(
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.User,
				e.Device,
				e.Operation,
				fmt.Sprintf("%d", len(e.Changes)),
				fmt.Sprintf("%d", e.Applied),
				result,
			)
		}
		t.Flush()
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditDevice, "device", "", "filter by device hostname")
	auditCmd.Flags().StringVar(&auditOperation, "operation", "", "filter by operation (plan, apply)")
	auditCmd.Flags().StringVar(&auditSince, "since", "", "only events newer than this duration (e.g. 24h)")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "max events to show (0 = all)")
}
