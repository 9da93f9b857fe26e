package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fabricmesh/fabrictl/pkg/render"
)

var renderCmd = &cobra.Command{
	Use:   "render <device>",
	Short: "Render a device's full configuration",
	Long: `Render the complete ordered configuration for one device.

Rendering is deterministic: the same fabric description always produces
byte-identical output, so it can be diffed against a previous run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vm, err := loadModel()
		if err != nil {
			return err
		}

		statements, err := render.Render(vm, args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			type stmt struct {
				Layer string `json:"layer"`
				Key   string `json:"key"`
				Text  string `json:"text"`
			}
			out := make([]stmt, 0, len(statements))
			for _, s := range statements {
				out = append(out, stmt{Layer: s.Layer.String(), Key: s.Key, Text: s.Text})
			}
			return json.NewEncoder(os.Stdout).Encode(out)
		}

		for _, s := range statements {
			fmt.Println(s.Text)
			fmt.Println("!")
		}
		return nil
	},
}
