package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"cleverspend/internal/cli"
	apphttp "cleverspend/internal/http"
	"cleverspend/internal/middleware/ratelimit"
	"cleverspend/internal/services"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long:  `Seed the default categories when the store is empty, then serve the JSON API until SIGINT or SIGTERM.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger := app.Config, app.Logger

			if _, err := app.Expenses.SeedDefaults(ctx, services.DefaultSeedCategories); err != nil {
				return err
			}

			limits := ratelimit.DefaultConfig()
			limits.RequestsPerMinute = cfg.RateLimitPerMinute
			limits.Burst = cfg.RateLimitBurst

			opts := apphttp.Options{
				Logger:    logger,
				Location:  cfg.Location(),
				RateLimit: limits,
			}
			if cfg.ExportEnabled() {
				exports, err := app.Exports(ctx)
				if err != nil {
					return err
				}
				opts.Exports = exports
			}

			srv := apphttp.NewServer(net.JoinHostPort("", cfg.Port), app.Expenses, app.Stats, opts)

			shutdownCtx, done := cli.GracefulShutdown(ctx, logger, shutdownTimeout, func(ctx context.Context) {
				if err := srv.Shutdown(ctx); err != nil {
					logger.Error("Server shutdown error", "error", err)
				}
			})

			logger.Info("Starting HTTP server",
				"addr", srv.Addr,
				"backend", cfg.DataBackend,
				"timezone", cfg.Timezone,
				"notifications", cfg.NotificationsEnabled(),
				"export", cfg.ExportEnabled())

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Server failed", "error", err)
				return err
			}

			cli.WaitForShutdown(shutdownCtx, done)
			return nil
		},
	}
}
