package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fabricmesh/fabrictl/pkg/fabric"
	"github.com/fabricmesh/fabrictl/pkg/util"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the fabric description",
	Long: `Validate the fabric description against all model-level invariants.

Every violation is reported, not just the first, so a fabric file can be
fixed in one pass. Exit code is non-zero when any violation is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if fabricPath == "" {
			return fmt.Errorf("no fabric file: use --fabric or set a default with 'fabrictl settings set fabric <path>'")
		}

		m, err := fabric.Load(fabricPath)
		if err != nil {
			return err
		}

		_, err = fabric.Validate(m)
		if err != nil {
			var verr *util.ValidationError
			if errors.As(err, &verr) {
				if jsonOutput {
					json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
						"valid":  false,
						"errors": verr.Errors,
					})
				} else {
					for _, msg := range verr.Errors {
						fmt.Fprintf(os.Stderr, "error: %s\n", msg)
					}
				}
				return fmt.Errorf("%d validation error(s)", len(verr.Errors))
			}
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{"valid": true})
		}
		fmt.Println(m.Describe())
		fmt.Println("Fabric description is valid")
		return nil
	},
}
