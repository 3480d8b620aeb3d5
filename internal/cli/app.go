package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/authflow"
	"github.com/aretw0/authflow/pkg/domain"
)

// App bundles the engine of one command invocation with its output.
type App struct {
	Options Options
	Engine  *authflow.Engine
	Logger  *slog.Logger
	Out     io.Writer

	cleanup func() error
}

// Open normalizes opts and builds the engine. Close must be called when done.
func Open(opts Options, out io.Writer, hooks ...domain.LifecycleHooks) (*App, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}
	if out == nil {
		out = os.Stdout
	}
	logger := NewLogger(opts)
	engine, cleanup, err := createEngine(opts, logger, hooks...)
	if err != nil {
		return nil, err
	}
	return &App{
		Options: opts,
		Engine:  engine,
		Logger:  logger,
		Out:     out,
		cleanup: cleanup,
	}, nil
}

// Close releases store connections.
func (a *App) Close() error {
	return a.cleanup()
}
