package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinchodeluca/scann-url/internal/history"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or export the price history",
	}
	cmd.AddCommand(newHistoryShowCommand(opts), newHistoryExportCommand(opts))
	return cmd
}

// openHistory opens the configured store without wiring the rest of the app.
func openHistory(cmd *cobra.Command, opts *rootOptions) (*history.Service, error) {
	if err := opts.load(); err != nil {
		return nil, err
	}
	store, err := history.NewStore(cmd.Context(), opts.cfg.Storage, opts.logger)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return history.NewService(store, opts.logger), nil
}

func closeHistory(svc *history.Service, log logger.Logger) {
	if err := svc.Close(); err != nil {
		log.Warn("Failed to close history store", logger.Error(err))
	}
}

func newHistoryShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [product]",
		Short: "Show all products, or the entries of one product",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openHistory(cmd, opts)
			if err != nil {
				return err
			}
			defer closeHistory(svc, opts.logger)

			if len(args) == 1 {
				h, getErr := svc.Get(cmd.Context(), args[0])
				if getErr != nil {
					return getErr
				}
				if len(h) == 0 {
					return fmt.Errorf("no history for %q", args[0])
				}
				renderHistory(cmd.OutOrStdout(), args[0], h)
				return nil
			}

			all, err := svc.All(cmd.Context())
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No price history recorded yet")
				return nil
			}
			renderHistorySummary(cmd.OutOrStdout(), all)
			return nil
		},
	}
}

func newHistoryExportCommand(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the history to an Excel workbook",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if out == "" {
				return errors.New("--out is required")
			}

			svc, err := openHistory(cmd, opts)
			if err != nil {
				return err
			}
			defer closeHistory(svc, opts.logger)

			all, err := svc.All(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer func() {
				if closeErr := f.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			if err = history.Export(f, all); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s\n", len(all), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "prices.xlsx", "output file")
	return cmd
}
