package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/authflow/internal/runtime"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/authflow/pkg/ports"
)

// Runner ticks a driver on a fixed interval until its input is exhausted or
// its context is cancelled.
type Runner struct {
	// Interval between ticks. Zero means no delay.
	Interval time.Duration

	// Handler presents frames. If nil, frames are discarded.
	Handler Handler

	// Store persists a snapshot after start, after every tick and at the end.
	// If nil, runs are ephemeral.
	Store ports.RunStore

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// New creates a Runner with the default interval.
func New(opts ...Option) *Runner {
	r := &Runner{
		Interval: DefaultInterval,
		Handler:  discardHandler{},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = discardHandler{}
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Run drives an initialized driver to the end and returns its final snapshot.
// Cancelling ctx cancels the run; the cancelled snapshot is still returned,
// presented and persisted, and the error is nil.
func (r *Runner) Run(ctx context.Context, driver *runtime.Driver) (*domain.Run, error) {
	if driver.Status() == domain.StatusNotStarted {
		return nil, fmt.Errorf("run %s is not initialized", driver.ID())
	}

	start := driver.Snapshot()
	r.Logger.Info("run started", "run_id", start.ID, "automaton", start.Automaton, "symbols", len(start.Sequence))
	if err := r.Handler.Start(ctx, start); err != nil {
		return nil, fmt.Errorf("output error: %w", err)
	}
	if err := r.save(ctx, start); err != nil {
		return nil, err
	}

	var tick <-chan time.Time
	if r.Interval > 0 {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for !driver.Done() {
		if tick != nil {
			select {
			case <-ctx.Done():
			case <-tick:
			}
		}
		if ctx.Err() != nil {
			// The run outlives the caller's context so the cancellation can be recorded.
			driver.CancelContext(context.WithoutCancel(ctx))
			r.Logger.Info("run cancelled", "run_id", driver.ID(), "cursor", driver.Cursor())
			break
		}

		from := driver.Configuration()
		step := driver.Cursor()
		symbol := driver.Sequence()[step]
		to, _ := driver.TickContext(ctx)

		frame := Frame{
			Step:     step + 1,
			Total:    driver.Len(),
			Symbol:   symbol,
			From:     from,
			To:       to,
			Accepted: driver.Accepted(),
		}
		if err := r.Handler.Frame(ctx, frame); err != nil {
			return driver.Snapshot(), fmt.Errorf("output error: %w", err)
		}
		if err := r.save(ctx, driver.Snapshot()); err != nil {
			return driver.Snapshot(), err
		}
	}

	final := driver.Snapshot()
	// Persist and present even when ctx is already cancelled.
	finishCtx := context.WithoutCancel(ctx)
	if err := r.save(finishCtx, final); err != nil {
		return final, err
	}
	if err := r.Handler.Finish(finishCtx, final); err != nil {
		return final, fmt.Errorf("output error: %w", err)
	}
	r.Logger.Info("run finished", "run_id", final.ID, "outcome", Outcome(final))
	return final, nil
}

func (r *Runner) save(ctx context.Context, run *domain.Run) error {
	if r.Store == nil {
		return nil
	}
	if err := r.Store.Save(ctx, run); err != nil {
		return fmt.Errorf("critical persistence error: %w", err)
	}
	r.Logger.Debug("run saved", "run_id", run.ID, "cursor", run.Cursor)
	return nil
}
