package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/authflow/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/authflow/pkg/adapters/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// shutdownTimeout gives outstanding requests a deadline for completion.
const shutdownTimeout = 5 * time.Second

// NewRegistry returns a metrics registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// WatchDefinitions drops compiled tables whenever a definition file changes.
// Loaders that cannot watch only produce a warning.
func (a *App) WatchDefinitions(ctx context.Context) {
	if err := a.Engine.Watch(ctx); err != nil {
		a.Logger.Warn("Hot reload disabled", "err", err)
		return
	}
	a.Logger.Info("Watching definitions", "dir", a.Options.Dir)
}

// APIHandler builds the REST API of the engine, serving gatherer on /metrics.
func (a *App) APIHandler(gatherer prometheus.Gatherer) (http.Handler, error) {
	return httpAdapter.NewHandler(a.Engine,
		httpAdapter.WithMetrics(gatherer),
		httpAdapter.WithLogger(a.Logger),
	)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(a.Out, "Starting authflow server on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		printSystemMessage(a.Out, "Start shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(a.Out, "Server stopped gracefully")
		return nil
	}
}

// MCP transports accepted by ServeMCP.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ServeMCP exposes the engine as MCP tools over stdio or SSE.
// Over stdio nothing but JSON-RPC may reach Stdout, so only the logger reports progress.
func (a *App) ServeMCP(ctx context.Context, transport string, port int) error {
	srv := mcpAdapter.NewServer(a.Engine, mcpAdapter.WithLogger(a.Logger))
	switch transport {
	case TransportStdio, "":
		a.Logger.Info("Starting authflow MCP server (stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		return srv.ServeSSE(ctx, port)
	default:
		return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
	}
}
