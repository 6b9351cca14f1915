package main

import (
	"errors"
	"flag"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rolegate/rolegate/pkg/api"
	"github.com/rolegate/rolegate/pkg/config"
	"github.com/rolegate/rolegate/pkg/observability"
	"github.com/rolegate/rolegate/pkg/roles"
)

const version = "1.0.0"

func main() {
	port := flag.String("port", "", "Port to listen on (overrides ROLEGATE_PORT)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	promRegistry := prometheus.NewRegistry()
	var engineMetrics *roles.Metrics
	var httpMetrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		engineMetrics = roles.NewMetrics(promRegistry)
		httpMetrics = observability.NewMetrics(promRegistry)
	}

	registry := roles.NewRegistry(roles.RegistryConfig{
		AdminCacheTTL: cfg.Engine.AdminCacheTTL,
		CacheSize:     cfg.Engine.CacheSize,
		Metrics:       engineMetrics,
	})
	registry.AddAdmin(cfg.Engine.SeedAdmins...)
	if len(cfg.Engine.SeedAdmins) > 0 {
		logger.WithField("count", len(cfg.Engine.SeedAdmins)).Info("seeded admins root")
	}

	server := api.NewServer(registry, logger)

	var handler http.Handler = server
	handler = api.LoggingMiddleware(logger)(handler)
	handler = api.RecoveryMiddleware(logger)(handler)
	if httpMetrics != nil {
		handler = observability.HTTPMetricsMiddleware(httpMetrics)(handler)
	}

	health := observability.NewHealthChecker(version)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", health.Liveness)
	mux.HandleFunc("/readyz", health.Readiness)
	if httpMetrics != nil {
		mux.Handle("/metrics", observability.MetricsHandler(promRegistry))
	}
	mux.Handle("/", handler)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		defer observability.RecoverPanic(logger, "http server")
		logger.WithField("addr", cfg.Addr()).Info("starting rolegate server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	if err := observability.GracefulShutdown(logger, srv, cfg.Server.ShutdownTimeout); err != nil {
		os.Exit(1)
	}
}
