package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/authflow/pkg/ports"
)

// DefaultInterval is the delay between ticks used by the CLI.
const DefaultInterval = 500 * time.Millisecond

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInterval sets the delay between ticks. Zero ticks as fast as possible.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.Interval = d
	}
}

// WithStore configures the RunStore snapshots are persisted to after every tick.
func WithStore(store ports.RunStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithHandler configures how frames are presented.
func WithHandler(handler Handler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}
