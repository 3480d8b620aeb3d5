package main

import (
	"net"
	"os"

	"github.com/aretw0/authflow/internal/cli"
	"github.com/aretw0/authflow/pkg/observability"
	"github.com/aretw0/authflow/pkg/runner"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the automata and persisted runs as a JSON API over HTTP.
Runs advance one tick per POST /runs/{id}/tick; GET /runs/{id}/events streams
every change. Prometheus metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		host, _ := cmd.Flags().GetString("host")
		watch, _ := cmd.Flags().GetBool("watch")

		opts := globalOpts
		if err := opts.ApplyEnv(os.LookupEnv); err != nil {
			return err
		}
		reg := cli.NewRegistry()
		app, err := cli.Open(opts, cmd.OutOrStdout(), observability.NewMetrics(reg).Hooks())
		if err != nil {
			return err
		}
		defer app.Close()

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()

		if watch {
			app.WatchDefinitions(signals.Context())
		}
		handler, err := app.APIHandler(reg)
		if err != nil {
			return err
		}
		return app.Serve(signals.Context(), net.JoinHostPort(host, port), handler)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("host", "", "Interface to listen on (default: all)")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload definitions when their files change")
}
