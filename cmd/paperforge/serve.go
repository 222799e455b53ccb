package main

import (
	"github.com/spf13/cobra"

	"github.com/paperforge/paperforge/internal/config"
	"github.com/paperforge/paperforge/internal/pipeline"
	"github.com/paperforge/paperforge/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the paperforge server",
	Long: `Start the paperforge HTTP server.

The server provides:
  - GET  /health          - Server health check
  - POST /api/v1/generate - Upload papers and a template, get LaTeX back

Examples:
  paperforge serve                    # Start on default port 8080
  paperforge serve --port 3000        # Start on custom port
  paperforge serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := newLogger()
		mgr, h, err := loadRuntime()
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		host := serveHost
		if host == "" {
			host = cfg.Server.Host
		}
		port := servePort
		if port == "" {
			port = cfg.Server.Port
		}

		srv, err := server.New(server.Config{
			Host:     host,
			Port:     port,
			Pipeline: pipeline.New(cfg, h, logger),
			Home:     h,
			Logger:   logger,
		})
		if err != nil {
			return err
		}

		// Hot-reload backend settings: a config change swaps in a fresh
		// pipeline; a change that breaks credentials is rejected and the
		// running pipeline stays.
		mgr.OnChange(func(c *config.Config) {
			if err := c.ResolveCredentials(); err != nil {
				logger.Error("reloaded config rejected", "error", err)
				return
			}
			srv.SetPipeline(pipeline.New(c, h, logger))
			logger.Info("configuration reloaded, pipeline refreshed")
		})
		mgr.WatchConfig()

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from config)")

	rootCmd.AddCommand(serveCmd)
}
