package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart    EventType = "run_start"
	EventTick        EventType = "tick"
	EventRunComplete EventType = "run_complete"
	EventRunCancel   EventType = "run_cancel"
)

// RunEvent describes a lifecycle change of a run.
type RunEvent struct {
	Timestamp     time.Time     `json:"timestamp"`
	Type          EventType     `json:"type"`
	RunID         string        `json:"run_id"`
	Automaton     string        `json:"automaton"`
	Mode          Mode          `json:"mode"`
	Cursor        int           `json:"cursor"`
	Configuration Configuration `json:"configuration"`
	Accepted      bool          `json:"accepted"`
}

// TickEvent describes one consumed symbol.
type TickEvent struct {
	RunEvent
	Symbol Symbol        `json:"symbol"`
	From   Configuration `json:"from"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRunStart    func(context.Context, *RunEvent)
	OnTick        func(context.Context, *TickEvent)
	OnRunComplete func(context.Context, *RunEvent)
	OnRunCancel   func(context.Context, *RunEvent)
}

// ComposeHooks returns hooks that call every non-nil callback of hooks in order.
func ComposeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *RunEvent) {
			for _, h := range hooks {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, e)
				}
			}
		},
		OnTick: func(ctx context.Context, e *TickEvent) {
			for _, h := range hooks {
				if h.OnTick != nil {
					h.OnTick(ctx, e)
				}
			}
		},
		OnRunComplete: func(ctx context.Context, e *RunEvent) {
			for _, h := range hooks {
				if h.OnRunComplete != nil {
					h.OnRunComplete(ctx, e)
				}
			}
		},
		OnRunCancel: func(ctx context.Context, e *RunEvent) {
			for _, h := range hooks {
				if h.OnRunCancel != nil {
					h.OnRunCancel(ctx, e)
				}
			}
		},
	}
}
