package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/authflow/internal/presentation/graph"
	"github.com/aretw0/authflow/internal/presentation/tui"
	"github.com/aretw0/authflow/internal/validator"
)

// List prints every automaton with its mode and size.
// Automata that fail to load are listed with their error instead of aborting.
func (a *App) List(ctx context.Context) error {
	names, err := a.Engine.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing automata: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintln(a.Out, "No automata found.")
		return nil
	}

	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODE\tSTATES\tSYMBOLS\tDESCRIPTION")
	for _, name := range names {
		def, err := a.Engine.Definition(ctx, name)
		if err != nil {
			fmt.Fprintf(tw, "%s\t?\t-\t-\tinvalid: %s\n", name, firstLine(err.Error()))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", name, def.Mode, len(def.States), len(def.Symbols()), def.Description)
	}
	return tw.Flush()
}

// Describe prints the transition table of an automaton as markdown, rendered
// with glamour when styled is true.
func (a *App) Describe(ctx context.Context, name string, styled bool) error {
	def, err := a.Engine.Definition(ctx, name)
	if err != nil {
		return err
	}
	out, err := tui.NewRenderer(styled)(tui.DescribeMarkdown(def))
	if err != nil {
		return fmt.Errorf("error rendering %s: %w", name, err)
	}
	_, err = fmt.Fprint(a.Out, out)
	return err
}

// Graph prints the Mermaid diagram of an automaton. With a run ID, the run's
// trajectory and current configuration are highlighted, and name may be empty.
func (a *App) Graph(ctx context.Context, name, runID string) error {
	var overlay *graph.GraphOverlay
	if runID != "" {
		run, err := a.Engine.GetRun(ctx, runID)
		if err != nil {
			return fmt.Errorf("error loading run '%s': %w", runID, err)
		}
		if name == "" {
			name = run.Automaton
		}
		if run.Automaton != name {
			return fmt.Errorf("run '%s' belongs to automaton %s, not %s", runID, run.Automaton, name)
		}
		overlay = graph.OverlayFromRun(run)
	}
	if name == "" {
		return fmt.Errorf("an automaton name or --session is required")
	}

	def, err := a.Engine.Definition(ctx, name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(a.Out, graph.GenerateMermaid(def, overlay))
	return err
}

// Validate checks every automaton and prints one line per automaton plus its
// warnings. The returned error summarizes the failures.
func (a *App) Validate(ctx context.Context) error {
	report, err := validator.ValidateAll(ctx, a.Engine.Loader())
	if err != nil {
		return err
	}
	for _, res := range report.Results {
		if res.OK() {
			fmt.Fprintf(a.Out, "✓ %s\n", res.Name)
		} else {
			fmt.Fprintf(a.Out, "✗ %s: %s\n", res.Name, firstLine(res.Err.Error()))
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(a.Out, "  ! %s\n", w)
		}
	}
	fmt.Fprintf(a.Out, "%d automata checked, %d invalid\n", len(report.Results), report.Failed())
	return report.Err()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
