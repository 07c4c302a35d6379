package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/sync/errgroup"

	"github.com/metagrid-io/catalog-console/internal/api"
	"github.com/metagrid-io/catalog-console/internal/telemetry"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 15 * time.Second
	serverIdleTimeout      = 60 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the console API server",
	Long: `Start the backend-for-frontend server the browser console talks to.

The server pages endpoint and dataset listings through the configured query
backend, tracks triggered collection runs, and reconciles their status.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("address", "", "Address to listen on (overrides config)")
	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		slog.Error("Error binding address flag", "error", err)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	address := cfg.Address
	if flagAddr := viper.GetString("address"); flagAddr != "" {
		address = flagAddr
	}

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(api.LoggingMiddleware),
		api.WithPageSize(cfg.PageSize),
	}

	var metrics *telemetry.ConsoleMetrics
	var provider *sdkmetric.MeterProvider
	if cfg.Telemetry.Metrics {
		registry := prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("failed to create metrics exporter: %w", err)
		}
		provider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

		metrics, err = telemetry.NewConsoleMetrics(provider)
		if err != nil {
			return fmt.Errorf("failed to create console metrics: %w", err)
		}

		serverOpts = append(serverOpts, api.WithMetricsHandler(
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		))
	}

	d := buildDeps(cfg, metrics)
	router := api.NewServer(d.svc, d.reconciler, d.index, serverOpts...)

	srv := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting console API server",
		"address", address,
		"backend_configured", d.exec.Configured())

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		slog.Info("Shutting down console API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		// Drain any in-flight completion polls before tearing down.
		d.reconciler.Wait()

		if provider != nil {
			if err := provider.Shutdown(shutdownCtx); err != nil {
				slog.Error("Error shutting down metrics provider", "error", err)
			}
		}
		return nil
	})

	return group.Wait()
}
