package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/saveslot/pkg/store"
)

// newSaveCmd represents the save command
func newSaveCmd() *cobra.Command {
	saveCmd := &cobra.Command{
		Use:   "save <name> [data]",
		Short: "Save data under a name",
		Long: `Frame data and write it to the save file for name, replacing any
previous content. Encryption and compression default to the config file's
defaults section.

Examples:
  saveslot save profile '{"level": 3}'
  saveslot save world --file world.bin --compress
  cat state.json | saveslot save state --file - --encrypt=false`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeFrom(cmd)
			if err != nil {
				return err
			}
			name := args[0]

			data, err := saveInput(cmd, args)
			if err != nil {
				return err
			}

			cfg := configFrom(cmd)
			opts := store.SaveOptions{Encrypt: cfg.Defaults.Encrypt, Compress: cfg.Defaults.Compress}
			if cmd.Flags().Changed("encrypt") {
				opts.Encrypt, _ = cmd.Flags().GetBool("encrypt")
			}
			if cmd.Flags().Changed("compress") {
				opts.Compress, _ = cmd.Flags().GetBool("compress")
			}

			if err := s.Save(name, data, opts); err != nil {
				return fmt.Errorf("failed to save %q: %w", name, err)
			}

			cmd.Printf("Saved '%s' (%d bytes, encrypted=%t, compressed=%t)\n", name, len(data), opts.Encrypt, opts.Compress)
			return nil
		},
	}

	saveCmd.Flags().Bool("encrypt", true, "Encrypt the record (default from config)")
	saveCmd.Flags().Bool("compress", false, "Compress the record (default from config)")
	saveCmd.Flags().StringP("file", "f", "", "Read data from a file, or - for stdin")

	return saveCmd
}

// saveInput returns the payload from the data argument or --file
func saveInput(cmd *cobra.Command, args []string) ([]byte, error) {
	file, _ := cmd.Flags().GetString("file")

	switch {
	case file != "" && len(args) > 1:
		return nil, fmt.Errorf("pass either a data argument or --file, not both")
	case file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		return data, nil
	case len(args) > 1:
		return []byte(args[1]), nil
	default:
		return nil, fmt.Errorf("a data argument or --file is required")
	}
}
