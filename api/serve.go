package main

import (
	"os/signal"
	"syscall"

	"github.com/rogerio-castellano/eshop/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, lggr, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = lggr.Sync() }()
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, lggr)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					lggr.Warn("Closing storage failed", zap.Error(err))
				}
			}()
			return a.ListenAndServe(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port, overriding server.port")
	return cmd
}
