package observability

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownFunc is a function to call during shutdown.
type ShutdownFunc func(context.Context) error

// GracefulShutdown blocks until SIGINT or SIGTERM, then shuts the HTTP server
// down within timeout and runs the registered shutdown functions in order.
func GracefulShutdown(logger *Logger, server *http.Server, timeout time.Duration, funcs ...ShutdownFunc) error {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Infof("Received signal %s, starting graceful shutdown", sig)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("HTTP server shutdown error")
			return fmt.Errorf("HTTP server shutdown failed: %w", err)
		}
		logger.Info("HTTP server shutdown complete")
	}

	var failed int
	for _, fn := range funcs {
		if err := fn(ctx); err != nil {
			logger.WithError(err).Error("Shutdown function failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("shutdown completed with %d errors", failed)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}
