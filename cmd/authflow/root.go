package main

import (
	"fmt"
	"os"

	"github.com/aretw0/authflow/internal/cli"
	"github.com/spf13/cobra"
)

// globalOpts is bound to the persistent flags shared by every command.
var globalOpts cli.Options

var rootCmd = &cobra.Command{
	Use:   "authflow",
	Short: "authflow simulates authentication flows as finite automata",
	Long: `authflow replays input sequences against deterministic (DFA) and
non-deterministic (NFA) authentication automata, one symbol per tick.

Without --dir the built-in auth-dfa and auth-nfa automata are served.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalOpts.Dir, "dir", "", "Directory containing automaton definitions (default: built-in catalog) [$AUTHFLOW_DIR]")
	flags.StringVar(&globalOpts.Format, "format", cli.FormatAuto, "Definition format in --dir: auto, loam or yaml")
	flags.StringVar(&globalOpts.Store, "store", "", "Where runs are persisted: memory, file or redis (default: file) [$AUTHFLOW_STORE]")
	flags.StringVar(&globalOpts.StorePath, "store-path", "", "Directory of the file store (default: <dir>/.authflow/runs)")
	flags.StringVar(&globalOpts.RedisAddr, "redis-addr", "", "Redis address for --store redis [$AUTHFLOW_REDIS_ADDR]")
	flags.IntVar(&globalOpts.RedisDB, "redis-db", 0, "Redis database for --store redis [$AUTHFLOW_REDIS_DB]")
	flags.BoolVar(&globalOpts.Strict, "strict", false, "Reject input symbols outside the automaton alphabet")
	flags.BoolVar(&globalOpts.Debug, "debug", false, "Enable debug logging to stderr")
	flags.StringVar(&globalOpts.LogFormat, "log-format", "", "Debug log format: text or json [$AUTHFLOW_LOG_FORMAT]")
}

// openApp resolves the persistent flags against the environment and builds the engine.
func openApp(cmd *cobra.Command) (*cli.App, error) {
	opts := globalOpts
	if err := opts.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cli.Open(opts, cmd.OutOrStdout())
}
