package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabricmesh/fabrictl/pkg/cli"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.fabrictl/settings.json.

Keys:
  fabric      default fabric description file
  audit-log   audit log location
  facts-dir   default directory for offline facts snapshots`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := cli.NewTable("KEY", "VALUE")
		t.Row("fabric", cli.Dash(userSettings.DefaultFabric))
		t.Row("audit-log", cli.Dash(userSettings.AuditLog))
		t.Row("facts-dir", cli.Dash(userSettings.FactsDir))
		t.Flush()
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		switch key {
		case "fabric":
			userSettings.DefaultFabric = value
		case "audit-log":
			userSettings.AuditLog = value
		case "facts-dir":
			userSettings.FactsDir = value
		default:
			return fmt.Errorf("unknown setting %q (valid: fabric, audit-log, facts-dir)", key)
		}
		if err := userSettings.Save(); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", key, value)
		return nil
	},
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Clear a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "fabric":
			userSettings.DefaultFabric = ""
		case "audit-log":
			userSettings.AuditLog = ""
		case "facts-dir":
			userSettings.FactsDir = ""
		default:
			return fmt.Errorf("unknown setting %q (valid: fabric, audit-log, facts-dir)", args[0])
		}
		if err := userSettings.Save(); err != nil {
			return err
		}
		fmt.Printf("%s cleared\n", args[0])
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
}
