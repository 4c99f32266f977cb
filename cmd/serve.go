package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataviz-cli/internal/ingest"
	"github.com/KaramelBytes/dataviz-cli/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the metrics engine and preprocessing operations over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		addr := c.ServerAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		opt := ingest.DefaultOptions()
		if c.MaxRows > 0 {
			opt.MaxRows = c.MaxRows
		}
		// calculators run sequentially per request; Workers bounds batches
		qopts := qualityOptions()
		n := qopts.Workers
		qopts.Workers = 1
		srv := server.New(server.Options{
			Quality:    qopts,
			Preprocess: preprocessParams(),
			Ingest:     opt,
			Workers:    n,
			Version:    version,
		})
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}
