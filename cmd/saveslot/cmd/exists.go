package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newExistsCmd represents the exists command
func newExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name>",
		Short: "Report whether a save file exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeFrom(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Exists(args[0]))
			return nil
		},
	}
}

// newPathCmd represents the path command
func newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <name>",
		Short: "Print the save file path for a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			path, err := s.FilePath(args[0], false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
