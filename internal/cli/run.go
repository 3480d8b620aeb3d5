package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/authflow"
	"github.com/aretw0/authflow/internal/presentation/tui"
	"github.com/aretw0/authflow/internal/runtime"
	"github.com/aretw0/authflow/pkg/catalog"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/authflow/pkg/runner"
	"github.com/muesli/termenv"
)

// RunOptions contains the configuration of the run command.
type RunOptions struct {
	Name     string
	Scenario string
	// Input is a raw comma or whitespace separated symbol list.
	Input    string
	Initial  []string
	Interval time.Duration
	JSON     bool
	// SessionID persists the run under this ID and resumes it when it exists.
	SessionID string
	// Fresh discards a previous run with the same SessionID first.
	Fresh bool
}

// Run plays an input sequence against an automaton, presenting one frame per
// tick. Interrupting ctx cancels the run; the cancelled run is returned
// without an error.
func (a *App) Run(ctx context.Context, opts RunOptions) (*domain.Run, error) {
	if !opts.JSON {
		tui.PrintBanner(a.Out)
	}

	driver, resumed, err := a.driverFor(ctx, opts)
	if err != nil {
		return nil, err
	}
	start := driver.Snapshot()
	if resumed && !opts.JSON {
		printSystemMessage(a.Out, "Resuming run '%s' at symbol %d/%d.", start.ID, start.Cursor, len(start.Sequence))
	}

	var handler runner.Handler
	if opts.JSON {
		handler = runner.NewJSONHandler(a.Out)
	} else {
		def, err := a.Engine.Definition(ctx, start.Automaton)
		if err != nil {
			return nil, err
		}
		textOpts := []runner.TextHandlerOption{runner.WithLabels(def)}
		if !tui.IsTerminal(a.Out) {
			textOpts = append(textOpts, runner.WithProfile(termenv.Ascii))
		}
		handler = runner.NewTextHandler(a.Out, textOpts...)
	}

	runnerOpts := []runner.Option{
		runner.WithInterval(opts.Interval),
		runner.WithLogger(a.Logger),
		runner.WithHandler(handler),
	}
	if opts.SessionID != "" {
		runnerOpts = append(runnerOpts, runner.WithStore(a.Engine.Sessions().Store()))
	}

	final, err := runner.New(runnerOpts...).Run(ctx, driver)
	if err != nil {
		return final, handleExecutionError(err)
	}
	if opts.SessionID != "" && !opts.JSON {
		printSystemMessage(a.Out, "Run '%s' saved (%s).", final.ID, final.Status)
	}
	return final, nil
}

// driverFor resumes the session run when it exists, or starts a new one.
func (a *App) driverFor(ctx context.Context, opts RunOptions) (*runtime.Driver, bool, error) {
	if opts.SessionID != "" {
		if opts.Fresh {
			if err := a.Engine.DeleteRun(ctx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrRunNotFound) {
				return nil, false, fmt.Errorf("error resetting run '%s': %w", opts.SessionID, err)
			}
		}

		run, err := a.Engine.GetRun(ctx, opts.SessionID)
		switch {
		case err == nil:
			if run.Status.Terminal() {
				return nil, false, fmt.Errorf("%w: run '%s' is already %s, use --fresh to start over",
					domain.ErrRunExists, run.ID, run.Status)
			}
			if opts.Name != "" && opts.Name != run.Automaton {
				return nil, false, fmt.Errorf("run '%s' belongs to automaton %s, not %s", run.ID, run.Automaton, opts.Name)
			}
			driver, err := a.Engine.Restore(ctx, run)
			if err != nil {
				return nil, false, fmt.Errorf("failed to resume run '%s': %w", run.ID, err)
			}
			a.Logger.Info("Session Resumed", "session_id", run.ID, "cursor", run.Cursor)
			return driver, true, nil
		case !errors.Is(err, domain.ErrRunNotFound):
			return nil, false, err
		}
	}

	if opts.Name == "" {
		return nil, false, fmt.Errorf("an automaton name is required")
	}
	req := authflow.RunRequest{
		Automaton: opts.Name,
		Scenario:  opts.Scenario,
		ID:        opts.SessionID,
	}
	for _, s := range opts.Initial {
		req.Initial = append(req.Initial, domain.StateID(s))
	}
	if opts.Input != "" {
		seq, err := runner.ParseInput(opts.Input)
		if err != nil {
			return nil, false, fmt.Errorf("invalid --input: %w", err)
		}
		req.Sequence = seq
	}
	if len(req.Sequence) == 0 && req.Scenario == "" {
		req.Scenario = catalog.DefaultScenario
	}

	driver, err := a.Engine.Prepare(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if opts.SessionID != "" {
		a.Logger.Info("Session Created", "session_id", opts.SessionID)
	}
	return driver, false, nil
}
