// Package cmd implements the pricewatch command-line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tinchodeluca/scann-url/internal/bootstrap"
	"github.com/tinchodeluca/scann-url/internal/config"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

// rootOptions carries the global flags and the values derived from them.
type rootOptions struct {
	v      *viper.Viper
	cfg    *config.Config
	logger logger.Logger
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	// Load .env early so the flag defaults and CONFIG_PATH can see it.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	root := &cobra.Command{
		Use:           "pricewatch",
		Short:         "Track product prices and alert when they reach a target",
		Long:          `pricewatch checks product pages, extracts their price, keeps a 30 day history and notifies when a target price is reached.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().String("config", "", "config file (default is $CONFIG_PATH or ./config.yml)")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")

	opts.v.SetEnvPrefix("PRICEWATCH")
	opts.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.v.AutomaticEnv()
	_ = opts.v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = opts.v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))
	_ = opts.v.BindEnv("config", config.PathEnv)

	root.AddCommand(
		newCheckCommand(opts),
		newWatchCommand(opts),
		newServeCommand(opts),
		newProductsCommand(opts),
		newHistoryCommand(opts),
		newVersionCommand(),
	)

	return root
}

// configPath resolves --config, then CONFIG_PATH, then the default.
func (o *rootOptions) configPath() string {
	if path := o.v.GetString("config"); path != "" {
		return path
	}
	return config.DefaultPath
}

// load reads the configuration and creates the logger once per invocation.
func (o *rootOptions) load() error {
	if o.cfg != nil {
		return nil
	}
	cfg, err := bootstrap.LoadConfig(o.configPath(), o.v.GetBool("debug"))
	if err != nil {
		return err
	}
	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = log
	return nil
}

// app loads the configuration and wires the application.
func (o *rootOptions) app(ctx context.Context) (*bootstrap.App, error) {
	if err := o.load(); err != nil {
		return nil, err
	}
	return bootstrap.NewApp(ctx, o.cfg, o.logger)
}

// ignoreCanceled turns an interrupt into a clean exit.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pricewatch version %s\n", Version)
		},
	}
}
