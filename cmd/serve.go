package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve summaries and forecasts over local HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	addr := cfg.Server.Addr
	if flagAddr != "" {
		addr = flagAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := server.New(server.Config{
		DataPath: flagFile,
		Columns:  cfg.Columns.Model(),
		Forecast: cfg.Forecast.Model(),
		UseCache: !flagNoCache,
		Addr:     addr,
		CacheTTL: cfg.Server.CacheTTL,
		Logger:   log,
	})

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Serving %s on http://%s (Ctrl+C to stop)\n", flagFile, addr)
	}
	return svc.Run(ctx)
}
