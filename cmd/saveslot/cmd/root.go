/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ssargent/saveslot/pkg/config"
	"github.com/ssargent/saveslot/pkg/di"
	"github.com/ssargent/saveslot/pkg/store"
)

// container holds the injected dependencies
var container *di.Container

// SetContainer injects the dependency container used by all commands
func SetContainer(c *di.Container) {
	container = c
}

type contextKey string

const (
	storeKey  contextKey = "store"
	configKey contextKey = "config"
	loggerKey contextKey = "logger"
)

// annotationNoStore marks commands that run without opening a store
const annotationNoStore = "saveslot/no-store"

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "saveslot",
		Short: "saveslot - framed save data store",
		Long: `saveslot persists application save data under logical names, optionally
encrypting and compressing it, and reads back both the current and the
legacy record layouts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configKey, cfg)
			ctx = context.WithValue(ctx, loggerKey, logger)

			if cmd.Annotations[annotationNoStore] == "" {
				if container == nil {
					return fmt.Errorf("dependency container not initialized")
				}
				s, err := container.GetStoreFactory().CreateStore(cfg, logger)
				if err != nil {
					return fmt.Errorf("failed to open store: %w", err)
				}
				// Store in command context
				ctx = context.WithValue(ctx, storeKey, s)
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().StringP("store-path", "s", "", "Directory holding save files (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(
		newInitCmd(),
		newSaveCmd(),
		newLoadCmd(),
		newDeleteCmd(),
		newExistsCmd(),
		newPathCmd(),
		newListCmd(),
		newInspectCmd(),
		newSnapshotCmd(),
		newSnapshotsCmd(),
		newRestoreCmd(),
		newDeleteSnapshotCmd(),
		newServeCmd(),
	)

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := execute(newRootCmd()); err != nil {
		os.Exit(1)
	}
}

// execute runs rootCmd and closes the store opened for the executed command
func execute(rootCmd *cobra.Command) error {
	executed, err := rootCmd.ExecuteC()
	if executed != nil && executed.Context() != nil {
		if s, ok := executed.Context().Value(storeKey).(*store.SaveStore); ok {
			if cerr := s.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close store: %w", cerr)
			}
		}
	}
	return err
}

// loadConfig reads the config file, falling back to defaults when the
// default location has none, then applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	explicit := configPath != ""
	if !explicit {
		configPath = config.GetDefaultConfigPath()
	}

	var cfg *config.Config
	switch {
	case config.ConfigExists(configPath):
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	case explicit && cmd.Annotations[annotationNoStore] == "":
		return nil, fmt.Errorf("config file does not exist: %s (run 'saveslot init' first)", configPath)
	default:
		cfg = config.DefaultConfig()
	}

	if storePath, _ := cmd.Flags().GetString("store-path"); storePath != "" {
		cfg.StorePath = storePath
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(level)
	return logger, nil
}

// storeFrom returns the store opened by the root command
func storeFrom(cmd *cobra.Command) (*store.SaveStore, error) {
	s, ok := cmd.Context().Value(storeKey).(*store.SaveStore)
	if !ok {
		return nil, fmt.Errorf("store not found in context")
	}
	return s, nil
}

// configFrom returns the configuration loaded by the root command
func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

// loggerFrom returns the logger configured by the root command
func loggerFrom(cmd *cobra.Command) logrus.FieldLogger {
	if logger, ok := cmd.Context().Value(loggerKey).(logrus.FieldLogger); ok {
		return logger
	}
	return logrus.StandardLogger()
}
