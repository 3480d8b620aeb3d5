package runner

import (
	"context"

	"github.com/aretw0/authflow/pkg/domain"
)

// Frame is one consumed symbol as seen by a Handler.
type Frame struct {
	// Step is the 1-based index of the symbol just consumed.
	Step   int                  `json:"step"`
	Total  int                  `json:"total"`
	Symbol domain.Symbol        `json:"symbol"`
	From   domain.Configuration `json:"from"`
	To     domain.Configuration `json:"to"`
	// Accepted reports whether To contains an accepting state.
	Accepted bool `json:"accepted"`
}

// Dead reports whether a non-deterministic run has no valid continuation left.
func (f Frame) Dead() bool {
	return f.To.IsEmpty()
}

// Handler defines the strategy for presenting a run.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type Handler interface {
	// Start presents the run before the first tick.
	Start(ctx context.Context, run *domain.Run) error

	// Frame presents one tick.
	Frame(ctx context.Context, frame Frame) error

	// Finish presents the final snapshot, completed or cancelled.
	Finish(ctx context.Context, run *domain.Run) error
}

// Outcome classifies a finished run for presentation and metrics.
func Outcome(run *domain.Run) string {
	switch {
	case run.Status == domain.StatusCancelled:
		return "cancelled"
	case run.Status != domain.StatusCompleted:
		return string(run.Status)
	case run.Accepted:
		return "accepted"
	case run.Mode == domain.Nondeterministic && run.Configuration.IsEmpty():
		return "dead"
	default:
		return "rejected"
	}
}

// discardHandler drops every frame.
type discardHandler struct{}

func (discardHandler) Start(context.Context, *domain.Run) error  { return nil }
func (discardHandler) Frame(context.Context, Frame) error        { return nil }
func (discardHandler) Finish(context.Context, *domain.Run) error { return nil }
