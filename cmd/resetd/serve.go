package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"resetd/pkg/app"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /api/reset-db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return app.RunAPI(ctx, cfg, listenAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default 127.0.0.1:<port+1>)")
}
