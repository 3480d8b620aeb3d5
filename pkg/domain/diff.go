package domain

// RunDiff represents the changes between two snapshots of the same run.
// It is designed to be serialized to JSON for partial updates on the client.
type RunDiff struct {
	// RunID is always present to identify the target.
	RunID string `json:"run_id"`

	// Consumed lists the symbols read between the two snapshots.
	Consumed InputSequence `json:"consumed,omitempty"`

	Cursor        *int           `json:"cursor,omitempty"`
	Configuration *Configuration `json:"configuration,omitempty"`

	// Entered and Left are the states that joined or dropped out of the configuration.
	Entered []StateID `json:"entered,omitempty"`
	Left    []StateID `json:"left,omitempty"`

	Status   *RunStatus `json:"status,omitempty"`
	Accepted *bool      `json:"accepted,omitempty"`
}

// Diff calculates the difference between oldRun and newRun.
// If oldRun is nil, it returns a diff representing the entire newRun (initial load).
// It returns nil when nothing observable changed.
func Diff(oldRun, newRun *Run) *RunDiff {
	if newRun == nil {
		return nil
	}

	diff := &RunDiff{RunID: newRun.ID}

	oldCursor := 0
	var oldCfg Configuration
	if oldRun != nil {
		oldCursor = oldRun.Cursor
		oldCfg = oldRun.Configuration
	}

	if oldRun == nil || oldRun.Cursor != newRun.Cursor {
		cursor := newRun.Cursor
		diff.Cursor = &cursor
		if newRun.Cursor > oldCursor && newRun.Cursor <= len(newRun.Sequence) {
			diff.Consumed = append(InputSequence(nil), newRun.Sequence[oldCursor:newRun.Cursor]...)
		}
	}

	if oldRun == nil || !oldCfg.Equal(newRun.Configuration) {
		cfg := newRun.Configuration
		diff.Configuration = &cfg
		for _, s := range newRun.Configuration.States() {
			if !oldCfg.Contains(s) {
				diff.Entered = append(diff.Entered, s)
			}
		}
		for _, s := range oldCfg.States() {
			if !newRun.Configuration.Contains(s) {
				diff.Left = append(diff.Left, s)
			}
		}
	}

	if oldRun == nil || oldRun.Status != newRun.Status {
		status := newRun.Status
		diff.Status = &status
	}
	if oldRun == nil || oldRun.Accepted != newRun.Accepted {
		accepted := newRun.Accepted
		diff.Accepted = &accepted
	}

	if diff.isEmpty() {
		return nil
	}
	return diff
}

func (d *RunDiff) isEmpty() bool {
	return d.Cursor == nil &&
		d.Configuration == nil &&
		d.Status == nil &&
		d.Accepted == nil
}
