// Package observability provides structured logging, Prometheus metrics, and health probes.
//
// # Overview
//
// This package centralizes observability infrastructure including JSON logging, metrics
// collection, health checks, and graceful shutdown helpers.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.Info("Server started")
//
// Context-aware logging:
//
//	logger.WithField("role", name).WithError(err).Error("evaluation failed")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.HTTPRequestsTotal.WithLabelValues("GET", "/roles", "200").Inc()
//	metrics.HTTPRequestDuration.WithLabelValues("GET", "/roles").Observe(0.123)
//
// Wrap handlers with observability.HTTPMetricsMiddleware and expose the
// registry through observability.MetricsHandler.
//
// # Health Checks
//
// Configure health checker:
//
//	checker := observability.NewHealthChecker("1.0.0")
//	checker.RegisterCheck("provider", probeFunc)
//	mux.HandleFunc("/healthz", checker.Liveness)
//	mux.HandleFunc("/readyz", checker.Readiness)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/api: Request logging middleware
package observability
