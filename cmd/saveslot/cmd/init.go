/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/saveslot/pkg/config"
)

// newInitCmd represents the init command
func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a saveslot configuration and store directory",
		Long: `Write a configuration file with default settings and create the store
directory it points at.

Development mode keeps saves in ./Saves under the working directory;
runtime mode keeps them in the per-user application data directory.

Examples:
  saveslot init
  saveslot init --mode development
  saveslot init --config ./saveslot.yaml --store-path ./saves --force`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			storePath, _ := cmd.Flags().GetString("store-path")
			mode, _ := cmd.Flags().GetString("mode")
			force, _ := cmd.Flags().GetBool("force")

			if configPath == "" {
				configPath = config.GetDefaultConfigPath()
			}

			if config.ConfigExists(configPath) && !force {
				cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
				return nil
			}

			cfg, err := config.BootstrapConfig(configPath, storePath, mode)
			if err != nil {
				return fmt.Errorf("error bootstrapping config: %w", err)
			}

			resolved := cfg.ResolveStorePath()
			if err := os.MkdirAll(resolved, 0750); err != nil {
				return fmt.Errorf("error creating store directory: %w", err)
			}

			loggerFrom(cmd).WithField("config", configPath).Debug("configuration written")

			cmd.Printf("✅ Configuration created at %s\n", configPath)
			cmd.Printf("📁 Store path: %s\n", resolved)
			return nil
		},
	}

	initCmd.Flags().String("mode", config.ModeRuntime, "Store path mode: runtime or development")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")

	return initCmd
}
