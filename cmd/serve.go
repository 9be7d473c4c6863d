package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zikoelomari/guardrail/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes scanning over HTTP: snippet analysis, repository analysis,
code generation and a status endpoint. Requests are rate limited per
client; set server.api_key to require an X-API-Key header.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if key, _ := cmd.Flags().GetString("api-key"); key != "" {
			cfg.Server.APIKey = key
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.New(cfg).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().String("api-key", "", "Require this API key on every request")
}
