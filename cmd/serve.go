package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/adbudget-cli/internal/server"
	"github.com/KaramelBytes/adbudget-cli/internal/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recommendation pipeline over HTTP",
	Long: `Starts an HTTP server with:
  POST /api/recommendations  multipart field "file"; optional format=csv|json|xlsx, skip_rows, sheet
  GET  /healthz`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		addr := c.ServeAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		topt := table.DefaultOptions()
		topt.SkipRows = c.SkipRows
		srv := server.New(server.Config{
			Advisor:     c.AdvisorOptions(),
			Table:       topt,
			MaxUploadMB: c.MaxUploadMB,
			CORSOrigins: c.CORSOrigins,
		}, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger.WithFields(logrus.Fields{"addr": addr, "max_upload_mb": c.MaxUploadMB}).Info("listening")
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config serve_addr)")
}
