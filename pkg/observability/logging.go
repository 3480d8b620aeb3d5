package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/authflow/pkg/domain"
)

// LoggingHooks writes an audit trail of every run to logger.
// Ticks are logged at Debug, run boundaries at Info.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run started",
				"run_id", e.RunID,
				"automaton", e.Automaton,
				"mode", e.Mode,
				"configuration", e.Configuration.String(),
			)
		},
		OnTick: func(ctx context.Context, e *domain.TickEvent) {
			logger.DebugContext(ctx, "symbol consumed",
				"run_id", e.RunID,
				"cursor", e.Cursor,
				"symbol", e.Symbol,
				"from", e.From.String(),
				"to", e.Configuration.String(),
			)
		},
		OnRunComplete: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run completed",
				"run_id", e.RunID,
				"automaton", e.Automaton,
				"configuration", e.Configuration.String(),
				"accepted", e.Accepted,
			)
		},
		OnRunCancel: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run cancelled",
				"run_id", e.RunID,
				"automaton", e.Automaton,
				"cursor", e.Cursor,
			)
		},
	}
}
