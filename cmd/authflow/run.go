package main

import (
	"github.com/aretw0/authflow/internal/cli"
	"github.com/aretw0/authflow/pkg/runner"
	"github.com/spf13/cobra"
)

var runOpts cli.RunOptions

var runCmd = &cobra.Command{
	Use:   "run [name]",
	Short: "Replay an input sequence against an automaton",
	Long: `Replays a scenario or an explicit input sequence one symbol per tick,
printing the configuration after every tick.

With --session the run is persisted after each tick; running the same
session again resumes where it stopped (Ctrl+C cancels and saves it).`,
	Example: `  authflow run auth-dfa --scenario login-retry
  authflow run auth-nfa --input "accessForm, submitCredentials, credentials" --interval 0
  authflow run auth-dfa --session demo --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOpts
		if len(args) > 0 {
			opts.Name = args[0]
		}

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()

		_, err = app.Run(signals.Context(), opts)
		return err
	},
}

func init() {
	flags := runCmd.Flags()
	flags.StringVar(&runOpts.Scenario, "scenario", "", "Predefined input sequence of the automaton (default: login)")
	flags.StringVarP(&runOpts.Input, "input", "i", "", "Comma or space separated input symbols")
	flags.StringSliceVar(&runOpts.Initial, "initial", nil, "Override the initial configuration")
	flags.DurationVar(&runOpts.Interval, "interval", runner.DefaultInterval, "Delay between ticks (0 for none)")
	flags.BoolVar(&runOpts.JSON, "json", false, "Emit NDJSON events instead of text")
	flags.StringVarP(&runOpts.SessionID, "session", "s", "", "Persist and resume the run under this ID")
	flags.BoolVar(&runOpts.Fresh, "fresh", false, "Discard a previous run with the same --session first")
	runCmd.MarkFlagsMutuallyExclusive("scenario", "input")

	rootCmd.AddCommand(runCmd)
}
