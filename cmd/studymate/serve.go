package main

import (
	"context"

	"github.com/spf13/cobra"

	"studymate/internal/app"
	"studymate/internal/config"
	"studymate/internal/logging"
)

func serveCMD() *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP companion server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg := config.Load()
			if addr == "" {
				addr = cfg.ListenAddr()
			}
			log := logging.New(cmd.ErrOrStderr(), logging.Location(cfg.Timezone))
			return app.Run(ctx, cfg, log, addr)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (default $BIND_HOST:$PORT)")
	return serve
}
