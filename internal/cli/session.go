package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/authflow/pkg/runner"
)

// ListSessions prints every persisted run with its automaton, progress and outcome.
func (a *App) ListSessions(ctx context.Context) error {
	ids, err := a.Engine.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(a.Out, "No active sessions found.")
		return nil
	}

	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAUTOMATON\tPROGRESS\tSTATUS\tCONFIGURATION")
	for _, id := range ids {
		run, err := a.Engine.GetRun(ctx, id)
		if err != nil {
			// Expired or removed between List and Load.
			a.Logger.Warn("Skipping unreadable session", "session_id", id, "err", err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\t%s\n",
			run.ID, run.Automaton, run.Cursor, len(run.Sequence), runner.Outcome(run), run.Configuration)
	}
	return tw.Flush()
}

// InspectSession prints a persisted run as indented JSON.
func (a *App) InspectSession(ctx context.Context, id string) error {
	run, err := a.Engine.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", id, err)
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling run: %w", err)
	}
	_, err = fmt.Fprintln(a.Out, string(data))
	return err
}

// RemoveSessions deletes the given runs, reporting each one. It keeps going
// after a failure and returns an error if any removal failed.
func (a *App) RemoveSessions(ctx context.Context, ids []string) error {
	failed := 0
	for _, id := range ids {
		if err := a.Engine.DeleteRun(ctx, id); err != nil {
			fmt.Fprintf(a.Out, "Error removing '%s': %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(a.Out, "Removed session '%s'\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d session(s)", failed)
	}
	return nil
}

// RemoveAllSessions deletes every persisted run.
func (a *App) RemoveAllSessions(ctx context.Context) error {
	ids, err := a.Engine.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(a.Out, "No active sessions found.")
		return nil
	}
	return a.RemoveSessions(ctx, ids)
}
