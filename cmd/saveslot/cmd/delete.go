package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDeleteCmd represents the delete command
func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete the data saved under a name",
		Long: `Delete the save file for name. Deleting a name with no save file
succeeds.

Example:
  saveslot delete profile`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			if err := s.Delete(args[0]); err != nil {
				return fmt.Errorf("failed to delete %q: %w", args[0], err)
			}

			cmd.Printf("Deleted '%s'\n", args[0])
			return nil
		},
	}
}
