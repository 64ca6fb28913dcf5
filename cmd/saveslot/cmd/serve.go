/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/saveslot/pkg/api"
	"github.com/ssargent/saveslot/pkg/store"
)

// newServeCmd represents the serve command
func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the save inspection API server",
		Long: `Start an HTTP server for listing, reading, writing and inspecting
save data. Routes live under /api/v1; Prometheus metrics are served on
/metrics. Set server.api_key in the config, or --api-key, to require an
X-API-Key header.

Examples:
  saveslot serve
  saveslot serve --bind 0.0.0.0 --port 9300 --api-key=mysecretkey`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeFrom(cmd)
			if err != nil {
				return err
			}
			if container == nil {
				return fmt.Errorf("dependency container not initialized")
			}

			cfg := configFrom(cmd)
			if cmd.Flags().Changed("bind") {
				cfg.Server.Bind, _ = cmd.Flags().GetString("bind")
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("api-key") {
				cfg.Server.APIKey, _ = cmd.Flags().GetString("api-key")
			}

			serverConfig := api.ServerConfig{
				Bind:       cfg.Server.Bind,
				Port:       cfg.Server.Port,
				APIKey:     cfg.Server.APIKey,
				Defaults:   store.SaveOptions{Encrypt: cfg.Defaults.Encrypt, Compress: cfg.Defaults.Compress},
				Logger:     loggerFrom(cmd),
				Registerer: container.Registry(),
				Gatherer:   container.Registry(),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cmd.Printf("🚀 Starting saveslot API server on %s:%d\n", cfg.Server.Bind, cfg.Server.Port)
			cmd.Printf("📁 Store path: %s\n", s.StorePath())
			cmd.Printf("Metrics available at: http://%s:%d/metrics\n", cfg.Server.Bind, cfg.Server.Port)

			starter := container.GetServerFactory().CreateServerStarter()
			if err := starter.StartServer(ctx, s, serverConfig); err != nil {
				return fmt.Errorf("error starting server: %w", err)
			}
			return nil
		},
	}

	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to (default from config)")
	serveCmd.Flags().IntP("port", "p", 9300, "Port to listen on (default from config)")
	serveCmd.Flags().String("api-key", "", "API key required in X-API-Key (default from config)")

	return serveCmd
}
