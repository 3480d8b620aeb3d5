/*
Package runner drives a simulation run with an external clock.

The driver itself never sleeps: it consumes one symbol per Tick. The Runner is
the timer that calls Tick every Interval, streams every frame to a pluggable
Handler, persists snapshots when a store is configured, and cancels the run
when its context is cancelled (e.g. Ctrl+C).

# Key Components

  - Runner: The tick loop.
  - Handler: Decouples how frames are presented (text, NDJSON).
  - TextHandler: Human readable output with terminal highlighting.
  - JSONHandler: One JSON object per line, for scripts and pipes.

# Usage

	driver, err := eng.Prepare(ctx, authflow.RunRequest{Automaton: "auth-nfa", Scenario: "login"})
	if err != nil {
		log.Fatal(err)
	}

	r := runner.New(
		runner.WithInterval(500*time.Millisecond),
		runner.WithHandler(runner.NewTextHandler(os.Stdout)),
	)

	run, err := r.Run(ctx, driver)
*/
package runner
