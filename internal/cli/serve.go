package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/turtle/internal/config"
	httpAdapter "github.com/aretw0/turtle/pkg/adapters/http"
	"github.com/aretw0/turtle/pkg/adapters/mcp"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// NewHTTPHandler wires the HTTP transport to the configured backend.
func NewHTTPHandler(cfg config.Config, b *Backend, logger *slog.Logger) http.Handler {
	var opts []httpAdapter.Option
	opts = append(opts, httpAdapter.WithLogger(logger))

	if cfg.HTTP.Metrics {
		reg, metrics := NewRegistry()
		opts = append(opts, httpAdapter.WithMetrics(metrics, reg))
		return httpAdapter.NewHandler(NewManager(cfg, b, logger, metrics), opts...)
	}
	return httpAdapter.NewHandler(NewManager(cfg, b, logger, nil), opts...)
}

// Serve runs the handler on ln until ctx is done, then shuts down
// gracefully.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting turtle server", "address", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("Turtle server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP transport selected by cfg.MCP.
func ServeMCP(ctx context.Context, cfg config.Config, b *Backend, logger *slog.Logger) error {
	srv := mcp.NewServer(NewManager(cfg, b, logger, nil), mcp.WithLogger(logger))

	switch cfg.MCP.Transport {
	case "stdio":
		logger.Info("Starting turtle MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting turtle MCP server (SSE)", "port", cfg.MCP.Port)
		err := srv.ServeSSE(ctx, cfg.MCP.Port)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown mcp transport %q", config.ErrInvalidConfig, cfg.MCP.Transport)
	}
}
