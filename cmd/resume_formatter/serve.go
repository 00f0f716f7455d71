package main

import (
	"fmt"

	"github.com/jonathan/resume-formatter/internal/server"
	"github.com/jonathan/resume-formatter/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local preview server",
	Long: "Start an HTTP server on 127.0.0.1 that renders records on demand, streams upload " +
		"progress as server-sent events, and proxies the backend's history.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port := current.cfg.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	srv, err := server.New(server.Config{
		Port:         port,
		Client:       current.client,
		Renderer:     current.renderer(),
		Tokens:       current.tokens,
		PollInterval: current.cfg.PollInterval.Std(),
		PollTimeout:  current.cfg.PollTimeout.Std(),
		HistoryLimit: current.cfg.HistoryLimit,
		RateLimit:    ratelimit.LoadConfig(),
		Logger:       current.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", srv.Addr())
	return srv.Start(cmd.Context())
}
