package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tinchodeluca/scann-url/internal/logger"
	"github.com/tinchodeluca/scann-url/internal/scheduler"
	"github.com/tinchodeluca/scann-url/internal/server"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var (
		cronExpr   string
		runOnStart bool
		serve      bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Check prices on a cron schedule",
		Long: `Run a price check on every tick of schedule.cron until interrupted.
With --serve the dashboard API runs alongside the scheduler.`,
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

			schedCfg := app.Config.Schedule
			if cmd.Flags().Changed("cron") {
				schedCfg.Cron = cronExpr
			}
			if cmd.Flags().Changed("run-on-start") {
				schedCfg.RunOnStart = runOnStart
			}

			sched, err := scheduler.New(schedCfg, func(ctx context.Context) error {
				_, runErr := app.Runner.Run(ctx)
				return runErr
			}, app.Logger)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return sched.Run(ctx) })
			if serve {
				srv := server.NewServer(app.Config.Server, serverDeps(app), app.Logger)
				g.Go(func() error { return srv.Run(ctx) })
			}
			return ignoreCanceled(g.Wait())
		},
	}

	cmd.Flags().StringVar(&cronExpr, "cron", "", "override schedule.cron")
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run a check immediately")
	cmd.Flags().BoolVar(&serve, "serve", false, "also serve the dashboard API")
	return cmd
}
