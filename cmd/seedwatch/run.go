package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/FranksOps/seedwatch/internal/config"
	"github.com/FranksOps/seedwatch/internal/instance"
	"github.com/FranksOps/seedwatch/internal/metrics"
	"github.com/spf13/cobra"
)

func runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll all configured sites on their schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if len(cfg.Sites) == 0 {
				return errors.New("no sites configured")
			}

			logger := newLogger(cfg.Log.Level)
			slog.SetDefault(logger)

			cache, err := newCache(cfg.Cache)
			if err != nil {
				return err
			}
			defer cache.Close()

			store, err := newStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer store.Close()

			f, err := newFetcher(cfg, cache, logger)
			if err != nil {
				return err
			}

			reg := instance.NewRegistry(f, store, logger)
			for _, site := range cfg.Sites {
				_, err := reg.Create(cmd.Context(), instance.SiteConfig{
					Site:     site.Name,
					Cookie:   site.Cookie,
					Schedule: site.Schedule,
				})
				if err != nil {
					// One bad site entry does not stop the rest of the fleet.
					logger.Error("site not started", "site", site.Name, "error", err)
				}
			}
			if len(reg.Sites()) == 0 {
				return errors.New("no site could be started")
			}

			var metricsSrv *metrics.Server
			if cfg.Metrics.Enabled {
				metricsSrv = metrics.Start(cfg.Metrics.Port)
				logger.Info("metrics listening", "port", cfg.Metrics.Port)
			}

			logger.Info("seedwatch running", "sites", reg.Sites())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			logger.Info("shutting down")
			reg.Close()
			if metricsSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := metricsSrv.Stop(shutdownCtx); err != nil {
					logger.Warn("metrics shutdown", "error", err)
				}
			}
			return nil
		},
	}
}
