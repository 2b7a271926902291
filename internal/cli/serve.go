package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/existflow/semplan/internal/app"
	"github.com/existflow/semplan/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local API server",
	Long: `Run the local JSON API over the planner, with scheduled backups
when backup_cron is configured. Stops on Ctrl+C.

Examples:
  semplan serve
  semplan serve --listen 127.0.0.1:9000`,
	RunE: runServe,
}

var serveListen string

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := serveListen
	if addr == "" {
		addr = cfg.Listen
	}

	return withApp(cmd, func(a *app.App) error {
		fmt.Fprintf(cmd.OutOrStdout(), "🚀 Serving %s on http://%s\n", a.Store.ActiveProfile().Name, addr)
		logger.Info("API server starting", logger.F("addr", addr))
		return a.Serve(ctx, addr)
	})
}
