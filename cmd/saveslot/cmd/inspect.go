package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/saveslot/pkg/codec"
)

type inspectOutput struct {
	Name       string `json:"name" yaml:"name"`
	Path       string `json:"path" yaml:"path"`
	codec.Info `yaml:",inline"`
}

// newInspectCmd represents the inspect command
func newInspectCmd() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect <name>",
		Short: "Show how a save file is framed",
		Long: `Decode the save file for name and report which layout it uses, its
flags and its header, content and payload sizes.

Examples:
  saveslot inspect profile
  saveslot inspect profile --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeFrom(cmd)
			if err != nil {
				return err
			}
			name := args[0]

			info, err := s.Inspect(name)
			if err != nil {
				return fmt.Errorf("failed to inspect %q: %w", name, err)
			}
			path, err := s.FilePath(name, false)
			if err != nil {
				return err
			}

			out := inspectOutput{Name: name, Path: path, Info: *info}

			var data []byte
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				data, err = json.MarshalIndent(out, "", "  ")
				data = append(data, '\n')
			} else {
				data, err = yaml.Marshal(out)
			}
			if err != nil {
				return fmt.Errorf("failed to format record info: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	inspectCmd.Flags().Bool("json", false, "Print JSON instead of YAML")

	return inspectCmd
}
