package domain

import (
	"slices"
	"time"
)

// RunStatus is the lifecycle position of a simulation run.
type RunStatus string

const (
	StatusNotStarted RunStatus = "not_started" // Created, Initialize not called yet
	StatusRunning    RunStatus = "running"     // Initialized, symbols left to consume
	StatusCompleted  RunStatus = "completed"   // Every symbol consumed
	StatusCancelled  RunStatus = "cancelled"   // Stopped before the end
)

// Terminal reports whether no further transition may leave this status.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Run is the serializable snapshot of a simulation run.
// It carries everything needed to render the run or to resume it later.
type Run struct {
	ID        string `json:"id"`
	Automaton string `json:"automaton"`
	Mode      Mode   `json:"mode"`

	Sequence InputSequence `json:"sequence"`

	// Cursor is the index of the next symbol to consume.
	Cursor int `json:"cursor"`

	Configuration Configuration `json:"configuration"`

	// Trajectory holds every configuration visited, starting with the initial one.
	Trajectory []Configuration `json:"trajectory"`

	Status   RunStatus `json:"status"`
	Accepted bool      `json:"accepted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries an encrypted snapshot of the run. Only store middleware
	// sets it; such envelopes leave every other field but ID, Status and the
	// timestamps empty.
	Sealed string `json:"sealed,omitempty"`
}

// Complete reports whether the whole sequence has been consumed.
func (r *Run) Complete() bool {
	return r.Status == StatusCompleted
}

// Consumed returns the prefix of the sequence already fed to the automaton.
func (r *Run) Consumed() InputSequence {
	return slices.Clone(r.Sequence[:r.clampedCursor()])
}

// Remaining returns the symbols not consumed yet.
func (r *Run) Remaining() InputSequence {
	return slices.Clone(r.Sequence[r.clampedCursor():])
}

func (r *Run) clampedCursor() int {
	return max(0, min(r.Cursor, len(r.Sequence)))
}

// Snapshot returns a deep copy of the run, safe to mutate independently.
func (r *Run) Snapshot() *Run {
	if r == nil {
		return nil
	}
	out := *r
	out.Sequence = slices.Clone(r.Sequence)
	out.Trajectory = slices.Clone(r.Trajectory)
	return &out
}
