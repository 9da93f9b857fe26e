// Fabrictl - declarative BGP EVPN VXLAN fabric configuration
//
// A CLI tool that renders per-device EVPN/VXLAN configuration from a
// declarative fabric description, diffs it against each device's
// running state, and applies the minimal change set:
//
//   - validate: check the fabric description, reporting every violation
//   - render:   print one device's full configuration
//   - plan:     dry run — show what apply would change (exit 1 if anything)
//   - apply:    execute the change sets, one bounded pipeline per device
//
// Devices are independent management sessions: pipelines run
// concurrently and a failure on one device never blocks another.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fabricmesh/fabrictl/pkg/settings"
	"github.com/fabricmesh/fabrictl/pkg/util"
	"github.com/fabricmesh/fabrictl/pkg/version"
)

var (
	// Global option flags
	fabricPath   string
	deviceFilter string
	factsDir     string
	concurrency  int
	timeout      time.Duration
	verbose      bool
	jsonOutput   bool

	// Global state
	userSettings *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "fabrictl",
	Short:         "Declarative EVPN VXLAN fabric configuration",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `Fabrictl renders per-device EVPN/VXLAN configuration from a declarative
fabric description and reconciles devices toward it.

  fabrictl validate
  fabrictl render leaf1
  fabrictl plan
  fabrictl apply --device-filter 'leaf*'`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			if err := util.SetLogLevel("debug"); err != nil {
				return err
			}
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		if fabricPath == "" {
			fabricPath = userSettings.DefaultFabric
		}
		if factsDir == "" {
			factsDir = userSettings.FactsDir
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&fabricPath, "fabric", "f", "", "fabric description file (YAML)")
	rootCmd.PersistentFlags().StringVar(&deviceFilter, "device-filter", "", "glob filter on device hostnames")
	rootCmd.PersistentFlags().StringVar(&factsDir, "facts-dir", "", "read device facts from snapshot files instead of live devices")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 8, "max parallel device sessions")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "per-device call timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON output")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(settingsCmd)
}
