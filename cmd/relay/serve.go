package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-relay/internal/app"
	"github.com/vovakirdan/wirechat-relay/internal/config"
	applog "github.com/vovakirdan/wirechat-relay/internal/log"
)

func newServeCmd() *cobra.Command {
	var configPath string
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootLog := applog.New(defaults.LogLevel)
			cfg, path, err := config.Load(bootLog, configPath, cmd.Flags())
			if err != nil {
				return err
			}

			applog.SetRedact(cfg.Redact)
			logger := applog.New(cfg.LogLevel)
			logger.Info().Str("config", path).Msg("configuration loaded")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}

			logger.Info().Str("addr", applog.Sensitive(cfg.Addr)).Msg("starting relay")
			return application.Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to config file (default ./config.yaml)")
	flags.String("addr", defaults.Addr, "relay listen address (host:port)")
	flags.String("admin-addr", defaults.AdminAddr, "admin HTTP listen address, empty to disable")
	flags.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	flags.Bool("redact", defaults.Redact, "redact addresses and errors in logs")
	flags.Bool("prefix-sender", defaults.PrefixSender, "prefix relayed chunks with the sender address")
	flags.Float64("accept-rate", defaults.AcceptRate, "max accepted connections per second, 0 for unlimited")
	flags.Duration("write-timeout", defaults.WriteTimeout, "per write deadline for peer connections")
	return cmd
}
