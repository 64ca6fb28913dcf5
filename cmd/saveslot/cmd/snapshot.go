package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

// newSnapshotCmd represents the snapshot command
func newSnapshotCmd() *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot <name>",
		Short: "Archive the current save file for a name",
		Long: `Copy the raw record for name into the snapshot archive. Requires
archive.enabled in the config file. With --keep, older snapshots beyond
the newest N are deleted afterwards.

Examples:
  saveslot snapshot profile
  saveslot snapshot profile --keep 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			id, err := s.Snapshot(args[0])
			if err != nil {
				return fmt.Errorf("failed to snapshot %q: %w", args[0], err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), id.String())

			if cmd.Flags().Changed("keep") {
				keep, _ := cmd.Flags().GetInt("keep")
				removed, err := s.PruneSnapshots(args[0], keep)
				if err != nil {
					return fmt.Errorf("failed to prune snapshots for %q: %w", args[0], err)
				}
				cmd.Printf("Pruned %d old snapshot(s)\n", removed)
			}
			return nil
		},
	}

	snapshotCmd.Flags().Int("keep", 0, "Keep only the newest N snapshots")

	return snapshotCmd
}

// newSnapshotsCmd represents the snapshots command
func newSnapshotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots <name>",
		Short: "List archived snapshots for a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			snaps, err := s.Snapshots(args[0])
			if err != nil {
				return fmt.Errorf("failed to list snapshots for %q: %w", args[0], err)
			}
			if len(snaps) == 0 {
				cmd.Printf("No snapshots for '%s'\n", args[0])
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tSIZE")
			for _, snap := range snaps {
				fmt.Fprintf(w, "%s\t%s\t%d\n", snap.ID, snap.CreatedAt.Format(time.RFC3339), snap.Size)
			}
			return w.Flush()
		},
	}
}

// newRestoreCmd represents the restore command
func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <name> <snapshot-id>",
		Short: "Replace a save file with an archived snapshot",
		Long: `Write an archived record back to the save file for name. The bytes
are restored unchanged, in whichever layout they were archived.

Example:
  saveslot restore profile 2VZ3ZkPqGv8Zb1Q0dHc2pDnUeXy`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			id, err := ksuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid snapshot id %q: %w", args[1], err)
			}

			if err := s.Restore(args[0], id); err != nil {
				return fmt.Errorf("failed to restore %q: %w", args[0], err)
			}

			cmd.Printf("Restored '%s' from snapshot %s\n", args[0], id)
			return nil
		},
	}
}

// newDeleteSnapshotCmd represents the delete-snapshot command
func newDeleteSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-snapshot <name> <snapshot-id>",
		Short: "Remove one archived snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			id, err := ksuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid snapshot id %q: %w", args[1], err)
			}

			if err := s.DeleteSnapshot(args[0], id); err != nil {
				return fmt.Errorf("failed to delete snapshot of %q: %w", args[0], err)
			}

			cmd.Printf("Deleted snapshot %s of '%s'\n", id, args[0])
			return nil
		},
	}
}
