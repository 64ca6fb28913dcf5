package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newLoadCmd represents the load command
func newLoadCmd() *cobra.Command {
	loadCmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Load the data saved under a name",
		Long: `Decode the save file for name and write its payload to stdout, or to
a file with --out. Files in the legacy layout are read transparently.

Examples:
  saveslot load profile
  saveslot load world --out world.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeFrom(cmd)
			if err != nil {
				return err
			}
			name := args[0]

			payload, ok, err := s.TryLoad(name)
			if err != nil {
				return fmt.Errorf("failed to load %q: %w", name, err)
			}
			if !ok {
				return fmt.Errorf("save '%s' not found", name)
			}

			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				_, err := cmd.OutOrStdout().Write(payload)
				return err
			}

			if err := os.WriteFile(out, payload, 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			cmd.Printf("Wrote %d bytes to %s\n", len(payload), out)
			return nil
		},
	}

	loadCmd.Flags().StringP("out", "o", "", "Write the payload to a file instead of stdout")

	return loadCmd
}
