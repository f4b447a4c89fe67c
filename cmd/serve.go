package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tinchodeluca/scann-url/internal/bootstrap"
	"github.com/tinchodeluca/scann-url/internal/logger"
	"github.com/tinchodeluca/scann-url/internal/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and its JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := app.Close(); closeErr != nil {
					app.Logger.Warn("Failed to close application", logger.Error(closeErr))
				}
			}()

			srvCfg := app.Config.Server
			if addr != "" {
				srvCfg.Address = addr
			}
			return server.NewServer(srvCfg, serverDeps(app), app.Logger).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.address")
	return cmd
}

func serverDeps(app *bootstrap.App) server.Deps {
	return server.Deps{
		Snapshots: app.Snapshots,
		History:   app.History,
		Metrics:   app.Metrics.Handler(),
		StaticDir: app.Config.Dashboard.Dir,
		Version:   Version,
	}
}
