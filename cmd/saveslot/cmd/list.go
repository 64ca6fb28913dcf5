package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newListCmd represents the list command
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			names, err := s.List()
			if err != nil {
				return fmt.Errorf("failed to list saves: %w", err)
			}
			if len(names) == 0 {
				cmd.Printf("No saves in %s\n", s.StorePath())
				return nil
			}

			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
