package main

import (
	"github.com/spf13/cobra"
)

func newServeCmd(options *rootOptions) *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Serves POST /generate, POST /regenerate_visuals, GET /healthz and GET /metrics until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := options.build(cmd)
			if err != nil {
				return err
			}

			cfg := application.Config
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return application.Server().Run(cmd.Context(), cfg.Server.Addr, cfg.Server.ShutdownTimeout)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address; overrides ADDR")
	return serveCmd
}
