package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"landauSwap/internal/service"
)

func newServeCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Settle dirty batches on a fixed interval and expose /metrics",
		RunE:  runServe,
	}
	serveCmd.Flags().Duration("interval", 2*time.Second, "batch window length")
	serveCmd.Flags().StringSlice("pools", nil, "pool ids to settle (comma-separated, default all)")
	serveCmd.Flags().String("metrics-addr", ":9464", "metrics listen address, empty to disable")
	return serveCmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		server := &http.Server{
			Addr:              a.cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
		a.logger.Info("metrics listening", zap.String("addr", a.cfg.MetricsAddr))
	}

	scheduler := service.NewScheduler(service.SchedulerConfig{
		Interval: a.cfg.Interval,
		Pools:    a.cfg.Pools,
	}, a.svc, a.logger)

	err = scheduler.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
