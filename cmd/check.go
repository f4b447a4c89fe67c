package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tinchodeluca/scann-url/internal/logger"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check every product once",
		Long: `Fetch every product in the catalog, extract its price, update the history
and the dashboard snapshot, and send a notification for prices at or below target.`,
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

			report, err := app.Runner.Run(cmd.Context())
			if err != nil {
				return ignoreCanceled(err)
			}
			if !quiet && report.Products > 0 {
				renderReport(cmd.OutOrStdout(), report)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the result table")
	return cmd
}
